// Package youtube implements the free-text search provider on top of the
// yt-dlp binary.
//
// Search runs a ytsearch query with flat playlist dumping and maps each JSON
// line to an album candidate: full-soundtrack uploads and playlists both
// count. Because results come from a general-purpose index, the provider
// reports the free-text capability and the stricter pre-filter gate applies
// in automatic mode.
//
// The binary is located once per process; when it is missing the source
// quietly degrades to empty results instead of failing resolution. Command
// execution goes through a small Executor seam so tests can script yt-dlp
// output without the binary.
package youtube
