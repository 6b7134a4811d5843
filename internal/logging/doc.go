// Package logging assembles structured slog loggers and formatting helpers
// used across Overture services.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so resolver code can automatically tag
// log lines with request IDs and catalog sources. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing as the rest of the system.
package logging
