package redis

import "errors"

var (
	// ErrInvalidConnectionURL is returned when the connection URL cannot
	// be parsed.
	ErrInvalidConnectionURL = errors.New("failed to parse redis connection url")

	// ErrNotReady is returned when redis does not become reachable within
	// the configured attempts.
	ErrNotReady = errors.New("redis did not become ready in time")

	// ErrHealthcheckFailed is returned when the client cannot reach redis.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
