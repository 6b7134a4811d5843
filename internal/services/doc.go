// Package services defines shared utilities consumed by the resolver and the
// catalog source integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and source
//     names for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (transport vs parse vs configuration) without losing the cause chain.
//   - Cancellation detection so callers can tell an aborted lookup from a
//     catalog that genuinely failed.
//
// Use these helpers when wiring new source logic so operational behaviour
// (error handling, observability) stays uniform across the engine.
package services
