// Package scoring ranks catalog results against the title being resolved.
//
// It owns three stages: the pre-filter gate that rejects obviously
// non-soundtrack candidates before any scoring happens, the album scorer
// that ranks surviving candidates against host-supplied game metadata, and
// the track scorer that picks preview-worthy tracks out of an album listing.
//
// Scores are deterministic integer sums of independent signals. No signal
// vetoes another; only the gate rejects outright.
package scoring
