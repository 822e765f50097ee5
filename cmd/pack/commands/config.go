package commands

import "github.com/spf13/cobra"

func (c *CLI) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration after merging overlays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Config(cmd.Context(), c.options(), cmd.OutOrStdout())
		},
	}
}
