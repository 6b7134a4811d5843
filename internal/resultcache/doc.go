// Package resultcache persists resolved album results between runs.
//
// Resolution is expensive: each miss costs a query cascade against a remote
// catalog plus filtering and scoring. The cache keeps the final ranked album
// list per normalized title and source pair so repeat lookups short-circuit
// the whole pipeline.
//
// # Storage
//
// Results live in a single versioned JSON file (default
// ~/.cache/overture/results.json). Files with an unknown version or
// unreadable contents are discarded with a warning and the store starts
// empty. Entries carry an expiry stamp; expired entries act as misses and
// are dropped by the periodic sweep. Writes go through a temp file rename
// and a cross-process file lock, so concurrent overture invocations do not
// corrupt the file.
//
// # Usage
//
// CLI commands for inspection and management:
//
//	overture cache list             # List cached result sets
//	overture cache remove <title>   # Forget one title
//	overture cache prune            # Drop expired entries now
//	overture cache clear            # Remove everything
package resultcache
