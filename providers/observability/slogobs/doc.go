// Package slogobs provides an observability.Provider backed by log/slog.
//
// Spans are logged at start and end with their accumulated attributes,
// counters keep a running total in memory and log each increment, and the
// Logger methods map directly onto slog levels (Trace is Debug-4).
//
// The main entry point is [New]; output format and level are tuned with
// [WithFormat], [WithLevel], [WithOutput] and [WithLogger], and default to the
// OPENCHAT_LOG_FORMAT / OPENCHAT_LOG_LEVEL environment variables.
package slogobs
