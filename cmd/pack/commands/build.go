package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pack/internal/app"
)

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("stats", "", "Write a JSON report of every build pass to this file")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().Bool("dry-run", false, "Build without writing any output file")
}

func (c *CLI) buildOptions(cmd *cobra.Command) app.Options {
	opts := c.options()
	opts.StatsFile, _ = cmd.Flags().GetString("stats")
	opts.MetricsFile, _ = cmd.Flags().GetString("metrics-file")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	return opts
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle the configured entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.app.Build(cmd.Context(), c.buildOptions(cmd))
			return err
		},
	}
	addReportFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Watch(cmd.Context(), c.buildOptions(cmd))
		},
	}
	addReportFlags(cmd)
	return cmd
}
