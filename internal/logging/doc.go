// Package logging assembles the structured slog loggers used across mdprep.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides the per-run log file convention (one timestamped
// file under the log directory per batch run). A no-op logger is available
// for tests and wiring code that cannot fail.
package logging
