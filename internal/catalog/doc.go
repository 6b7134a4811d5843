// Package catalog defines the domain model shared by every music source:
// albums, tracks, host-supplied game metadata, the Source enumeration, and
// the Provider capability contract with its registry.
//
// Providers are best-effort by contract. Search and ListTracks return empty
// results for ordinary failures and reserve errors for cancellation, so the
// resolver's control flow never needs source-specific error handling.
package catalog
