package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show enabled sources and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensureSession(); err != nil {
				return err
			}

			providers := ctx.registry.Chain()
			rows := make([][]string, 0, len(providers))
			for i, provider := range providers {
				caps := provider.Capabilities()
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					provider.Source().String(),
					yesNo(caps.Search),
					yesNo(caps.FreeText),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Priority", "Source", "Search", "Free-text"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}
