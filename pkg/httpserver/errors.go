package httpserver

import "errors"

var (
	// ErrServerFailed indicates the server stopped with an error.
	ErrServerFailed = errors.New("http server failed")

	// ErrShutdownFailed indicates graceful shutdown did not complete.
	ErrShutdownFailed = errors.New("http server shutdown failed")
)
