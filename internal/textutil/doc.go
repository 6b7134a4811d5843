// Package textutil holds small text helpers for user-facing output: making
// album and track names safe to use as file names, and truncating labels for
// terminal display.
package textutil
