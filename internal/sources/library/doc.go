// Package library serves albums from an already-downloaded local collection.
//
// The collection lives under one root directory with one subdirectory per
// album. A SQLite index caches what a scan of that tree found: album
// directories, their display names, and per-file track names read from ID3
// tags where present or derived from file names otherwise. Searches run
// against the index, never the filesystem; Rescan rebuilds the index and a
// brand new index populates itself on first use.
//
// Matching is intentionally loose. Queries and album names are flattened to
// bare lowercase words, so "Hitman: Absolution" finds a directory named
// "Hitman Absolution OST".
package library
