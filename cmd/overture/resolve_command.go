package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"overture/internal/catalog"
	"overture/internal/resolver"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		auto       bool
		skipCache  bool
		jsonOut    bool
		platforms  []string
		year       int
	)

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve a game title to soundtrack albums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			src, err := parseSourceFlag(sourceFlag)
			if err != nil {
				return err
			}
			title := args[0]

			albums, err := engine.ResolveAlbums(cmd.Context(), title, src, resolver.Options{Auto: auto, SkipCache: skipCache})
			if err != nil {
				return err
			}

			// Host metadata reranks the accepted set; without hints the
			// engine's order already leads with the winner.
			if len(platforms) > 0 || year > 0 {
				game := catalog.Game{Name: title, Platforms: platforms, ReleaseYear: year}
				if best, ok := engine.PickBestAlbum(albums, game); ok {
					albums = promote(albums, best)
				}
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"title":  title,
					"source": src,
					"albums": albums,
				})
			}

			out := cmd.OutOrStdout()
			if len(albums) == 0 {
				fmt.Fprintf(out, "No acceptable album found for %q\n", title)
				return nil
			}

			rows := make([][]string, 0, len(albums))
			for i, album := range albums {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					album.Name,
					album.Year,
					albumDetail(album),
					album.Source.String(),
					album.ID,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Album", "Year", "Details", "Source", "ID"},
				rows,
				[]columnAlignment{alignRight},
			))
			colorSuccess.Fprintf(out, "Winner: %s (%s)\n", albums[0].Name, albums[0].Source)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "all", "Catalog to search (khinsider, youtube, library, or all)")
	cmd.Flags().BoolVar(&auto, "auto", false, "Unattended mode: stricter filtering of implausible results")
	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "Bypass the result cache for this resolution")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit albums as JSON")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Platform hint for ranking (repeatable)")
	cmd.Flags().IntVar(&year, "year", 0, "Release year hint for ranking")

	return cmd
}

// promote moves the ranked winner to the front, keeping the rest in order.
func promote(albums []catalog.Album, best catalog.Album) []catalog.Album {
	reordered := make([]catalog.Album, 0, len(albums))
	reordered = append(reordered, best)
	for _, album := range albums {
		if album.ID == best.ID && album.Source == best.Source {
			continue
		}
		reordered = append(reordered, album)
	}
	return reordered
}
