package directory

import "errors"

// ErrDirectoryUnavailable indicates the backing store could not be reached.
var ErrDirectoryUnavailable = errors.New("directory: backend unavailable")
