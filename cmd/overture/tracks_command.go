package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		albumID    string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "tracks <title>",
		Short: "List an album's tracks in ranked order",
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

			album, err := resolveTargetAlbum(cmd, engine, title, src, albumID)
			if err != nil {
				return err
			}

			tracks, err := engine.ListTracks(cmd.Context(), album)
			if err != nil {
				return err
			}
			ranked := engine.PickBestTracks(tracks, title, 0)

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"album":  album,
					"tracks": ranked,
				})
			}

			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintf(out, "No tracks found for %s\n", album.Name)
				return nil
			}

			fmt.Fprintf(out, "%s (%s)\n", album.Name, album.Source)
			rows := make([][]string, 0, len(ranked))
			for i, track := range ranked {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					track.Name,
					formatLength(track.Length),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Track", "Length"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "all", "Catalog to resolve against")
	cmd.Flags().StringVar(&albumID, "album", "", "Album identifier within the source (skips resolution)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit tracks as JSON")

	return cmd
}
