// Package logger builds the application's slog loggers.
//
// It provides a small factory over log/slog with JSON and text handlers,
// environment-driven defaults, and attribute helpers shared across
// packages so log fields stay consistently named.
package logger
