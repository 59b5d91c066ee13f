package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/buildinfo"
)

// Execute runs the alluvial CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (detect,
// convert, render, serve), configures logging based on the --verbose flag,
// and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "alluvial",
		Short:        "Alluvial reshapes tabular data and renders alluvial diagrams",
		Long:         `Alluvial is a CLI tool for reshaping categorical repeated-measures data between the alluvia (wide) and lodes (long) forms and rendering them as alluvial diagrams: stacked strata per axis connected by weighted flow ribbons.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDetectCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}
