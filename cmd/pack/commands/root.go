// Package commands implements the CLI commands for the pack bundler.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/pack/internal/app"
	"go.trai.ch/pack/internal/build"
	"go.trai.ch/zerr"
)

// EnvVar selects the configuration overlay when --env is not given.
const EnvVar = "PACK_ENV"

var (
	errInvalidLogFormat = zerr.New("invalid log format, expected 'text' or 'json'")
	errInvalidProgress  = zerr.New("invalid progress mode, expected 'auto', 'on' or 'off'")
)

// CLI represents the command line interface for pack.
type CLI struct {
	app     Application
	logs    LogSettings
	rootCmd *cobra.Command

	dir       string
	env       string
	verbose   bool
	logFormat string
	progress  string
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.Options) (*app.Stats, error)
	Watch(ctx context.Context, opts app.Options) error
	Clean(ctx context.Context, opts app.Options, clean app.CleanOptions) error
	Config(ctx context.Context, opts app.Options, w io.Writer) error
}

// LogSettings adjusts the logger from global flags.
type LogSettings interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, logs LogSettings) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pack",
		Short:         "A small JavaScript module bundler",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logs:    logs,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", ".", "Directory to start the configuration lookup from")
	flags.StringVarP(&c.env, "env", "e", os.Getenv(EnvVar), "Configuration overlay to apply (defaults to $"+EnvVar+")")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&c.logFormat, "log-format", "text", "Log format: text or json")
	flags.StringVar(&c.progress, "progress", "auto", "Progress output: auto, on or off")

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return c.applyGlobalFlags()
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) applyGlobalFlags() error {
	switch c.logFormat {
	case "text", "json":
	default:
		return zerr.With(errInvalidLogFormat, "value", c.logFormat)
	}
	switch c.progress {
	case "auto", "on", "off":
	default:
		return zerr.With(errInvalidProgress, "value", c.progress)
	}

	c.logs.SetJSON(c.logFormat == "json")
	c.logs.SetVerbose(c.verbose)
	return nil
}

// options returns the app options shared by every command.
func (c *CLI) options() app.Options {
	return app.Options{
		Dir:      c.dir,
		Env:      c.env,
		Progress: c.progress,
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
