package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the local collection index",
	}

	libraryCmd.AddCommand(newLibraryRescanCommand(ctx))

	return libraryCmd
}

func newLibraryRescanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Rebuild the collection index from disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureSession(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if ctx.library == nil {
				fmt.Fprintln(out, "Library source is disabled (set sources.library.enabled = true in the config)")
				return nil
			}
			indexed, err := ctx.library.Rescan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Indexed %d albums\n", indexed)
			return nil
		},
	}
}
