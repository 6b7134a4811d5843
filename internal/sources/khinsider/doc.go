// Package khinsider implements the provider for a large title-indexed HTML
// soundtrack catalog.
//
// The catalog has no API, so every operation scrapes a page: Search reads the
// site's search results table, ListTracks reads an album's song list, and
// FetchTrack follows a track page to its direct audio links. Pages are
// scanned tolerantly; markup the scanner does not recognize degrades to
// missing fields or empty results rather than failing the provider.
//
// All requests flow through one rate-limited client so a full resolve plus
// fetch stays polite to the site regardless of how many cascade steps run.
package khinsider
