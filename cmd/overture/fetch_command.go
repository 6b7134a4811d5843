package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"overture/internal/textutil"
)

const fetchParallelism = 3

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag string
		albumID    string
		top        int
		destDir    string
	)

	cmd := &cobra.Command{
		Use:   "fetch <title>",
		Short: "Download the top ranked tracks of the best matching album",
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
			picked := engine.PickBestTracks(tracks, title, top)
			if len(picked) == 0 {
				return fmt.Errorf("album %q lists no tracks", album.Name)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := destDir
			if dir == "" {
				dir = filepath.Join(cfg.Paths.DownloadDir, textutil.SanitizeFileName(album.Name))
			}

			out := cmd.OutOrStdout()
			colorInfo.Fprintf(out, "Fetching %d tracks from %s (%s)\n", len(picked), album.Name, album.Source)

			detach := ctx.attachProgress(len(picked) == 1)
			defer detach()

			var mu sync.Mutex
			fetched := 0
			group, groupCtx := errgroup.WithContext(cmd.Context())
			group.SetLimit(fetchParallelism)
			for i, track := range picked {
				track := track
				rank := i + 1
				group.Go(func() error {
					dest := filepath.Join(dir, fmt.Sprintf("%02d %s", rank, destFileName(track, "")))
					ok, err := engine.FetchTrack(groupCtx, track, dest, false)
					if err != nil {
						return err
					}
					mu.Lock()
					defer mu.Unlock()
					if ok {
						fetched++
						colorSuccess.Fprintf(out, "  fetched %s\n", filepath.Base(dest))
					} else {
						colorWarning.Fprintf(out, "  failed  %s\n", track.Name)
					}
					return nil
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}

			if fetched == 0 {
				return fmt.Errorf("no tracks fetched for %q", album.Name)
			}
			fmt.Fprintf(out, "Fetched %d/%d tracks to %s\n", fetched, len(picked), dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "all", "Catalog to resolve against")
	cmd.Flags().StringVar(&albumID, "album", "", "Album identifier within the source (skips resolution)")
	cmd.Flags().IntVar(&top, "top", 5, "How many ranked tracks to fetch (0 = every track)")
	cmd.Flags().StringVar(&destDir, "dest", "", "Destination directory (defaults under the configured download dir)")

	return cmd
}
