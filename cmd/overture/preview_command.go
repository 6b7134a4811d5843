package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"overture/internal/catalog"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		albumID    string
	)

	cmd := &cobra.Command{
		Use:   "preview <title>",
		Short: "Fetch a short preview of the best matching track",
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
			picked := engine.PickBestTracks(tracks, title, 1)
			if len(picked) == 0 {
				return fmt.Errorf("album %q lists no tracks", album.Name)
			}
			track := picked[0]

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dest := filepath.Join(cfg.Paths.DownloadDir, "previews", destFileName(track, "(preview)"))

			detach := ctx.attachProgress(track.Source == catalog.SourceKhinsider)
			ok, err := engine.FetchTrack(cmd.Context(), track, dest, true)
			detach()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("fetching preview of %q failed", track.Name)
			}

			// The path is the last line so scripts can capture it.
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "all", "Catalog to resolve against")
	cmd.Flags().StringVar(&albumID, "album", "", "Album identifier within the source (skips resolution)")

	return cmd
}
