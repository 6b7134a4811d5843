package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the resolution result cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

type cacheEntryView struct {
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	AlbumCount int       `json:"album_count"`
	Cached     time.Time `json:"cached"`
	Expires    time.Time `json:"expires"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if note := ctx.cacheDisabledNote(); note != "" {
				fmt.Fprintln(out, note)
				return nil
			}

			listings := store.Entries()
			if jsonOut {
				views := make([]cacheEntryView, 0, len(listings))
				for _, listing := range listings {
					views = append(views, cacheEntryView{
						Title:      listing.Title,
						Source:     listing.Source,
						AlbumCount: listing.AlbumCount,
						Cached:     listing.Timestamp,
						Expires:    listing.Expires,
					})
				}
				return writeJSON(cmd, views)
			}

			if len(listings) == 0 {
				fmt.Fprintln(out, "Result cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(listings))
			for _, listing := range listings {
				rows = append(rows, []string{
					listing.Title,
					listing.Source,
					strconv.Itoa(listing.AlbumCount),
					listing.Timestamp.Local().Format(stampLayout),
					listing.Expires.Local().Format(stampLayout),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Source", "Albums", "Cached", "Expires"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d cached resolutions\n", len(listings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit entries as JSON")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <title>",
		Short: "Remove cached results for one title across all sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if note := ctx.cacheDisabledNote(); note != "" {
				fmt.Fprintln(out, note)
				return nil
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed cached results for %q\n", args[0])
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if note := ctx.cacheDisabledNote(); note != "" {
				fmt.Fprintln(out, note)
				return nil
			}
			removed, err := store.Sweep()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d expired entries\n", removed)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if note := ctx.cacheDisabledNote(); note != "" {
				fmt.Fprintln(out, note)
				return nil
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Result cache cleared")
			return nil
		},
	}
}
