package pg

import "errors"

var (
	// ErrInvalidConfig is returned when the connection string cannot be
	// parsed.
	ErrInvalidConfig = errors.New("failed to parse postgres config")

	// ErrConnectionFailed is returned when all connection attempts are
	// exhausted.
	ErrConnectionFailed = errors.New("failed to open postgres connection")

	// ErrHealthcheckFailed is returned when the pool cannot reach the
	// database.
	ErrHealthcheckFailed = errors.New("postgres healthcheck failed")

	// ErrMigrationFailed is returned when schema migrations cannot be
	// applied.
	ErrMigrationFailed = errors.New("failed to apply migrations")
)
