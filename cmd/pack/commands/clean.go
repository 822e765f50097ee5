package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pack/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the build cache and the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cacheOnly, _ := cmd.Flags().GetBool("cache")
			outputOnly, _ := cmd.Flags().GetBool("output")

			opts := app.CleanOptions{Cache: true, Output: true}
			switch {
			case cacheOnly && !outputOnly:
				opts.Output = false
			case outputOnly && !cacheOnly:
				opts.Cache = false
			}

			return c.app.Clean(cmd.Context(), c.options(), opts)
		},
	}

	cmd.Flags().Bool("cache", false, "Only clean the build cache")
	cmd.Flags().Bool("output", false, "Only clean the output directory")

	return cmd
}
