package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"overture/internal/catalog"
	"overture/internal/resolver"
	"overture/internal/textutil"
)

// parseSourceFlag converts a --source value; empty and "all" route through
// the fallback chain.
func parseSourceFlag(value string) (catalog.Source, error) {
	src, ok := catalog.ParseSource(value)
	if !ok {
		return "", fmt.Errorf("unknown source %q (use khinsider, youtube, library, direct, or all)", value)
	}
	return src, nil
}

// resolveTargetAlbum returns the album named by --album, or resolves the
// title and keeps the ranked winner. Explicit album IDs need a concrete
// source to route to.
func resolveTargetAlbum(cmd *cobra.Command, engine *resolver.Engine, title string, src catalog.Source, albumID string) (catalog.Album, error) {
	if albumID != "" {
		if !src.Concrete() {
			return catalog.Album{}, fmt.Errorf("--album requires --source to name a single catalog")
		}
		return catalog.Album{ID: albumID, Name: title, Source: src}, nil
	}

	albums, err := engine.ResolveAlbums(cmd.Context(), title, src, resolver.Options{Auto: true})
	if err != nil {
		return catalog.Album{}, err
	}
	if len(albums) == 0 {
		return catalog.Album{}, fmt.Errorf("no acceptable album found for %q", title)
	}
	return albums[0], nil
}

var downloadExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wav":  true,
	".opus": true,
}

// destFileName builds a safe file name for a fetched track, keeping a
// recognizable audio extension from the handle. Handles without one, like
// video IDs, default to .mp3 to match the extracted audio.
func destFileName(track catalog.Track, suffix string) string {
	ext := strings.ToLower(filepath.Ext(track.ID))
	if !downloadExtensions[ext] {
		ext = ".mp3"
	}
	name := textutil.SanitizeFileName(track.Name)
	if suffix != "" {
		name += " " + suffix
	}
	return name + ext
}
