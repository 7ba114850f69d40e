package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional configuration file path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. The bare command runs the whole
// regression catalog; subcommands inspect the catalog and the run history.
func NewRootCommand() *cobra.Command {
	rootOpts := &RootOptions{}
	runOpts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Regression harness for the variant datastore tools",
		Long: `Run the variant datastore regression catalog.

Each catalog entry loads a dataset into a scratch workspace with one of the
loader tools, then runs its declared queries and verifies every captured
stdout against a recorded golden file. The run stops at the first failure
and keeps the workspace for inspection.

Exit codes:
  0 - All verifications passed
  1 - A stage failed (process failure, output mismatch, missing fixture)
  2 - Command error (bad configuration, catalog, or flags)

Examples:
  regress
  regress --filter "java_*"
  regress --catalog cases.yaml --base-dir /data/tests
  regress --update --filter t0_1_2
  regress --history-db runs.db
  regress list`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(rootOpts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(runOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&rootOpts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&rootOpts.Config, "config", "", "path to YAML configuration file")

	// Run flags
	cmd.Flags().StringVar(&runOpts.Catalog, "catalog", "", "YAML catalog file (default: built-in catalog)")
	cmd.Flags().StringVar(&runOpts.Filter, "filter", "", "filter tests by glob pattern")
	cmd.Flags().BoolVar(&runOpts.Update, "update", false, "regenerate golden files from captured output")
	cmd.Flags().BoolVar(&runOpts.KeepWorkspace, "keep-workspace", false, "keep the scratch workspace after a successful run")
	cmd.Flags().StringVar(&runOpts.HistoryDB, "history-db", "", "record the run in this SQLite history database")
	cmd.Flags().StringVar(&runOpts.BaseDir, "base-dir", ".", "directory holding inputs/ and golden_outputs/")
	cmd.Flags().StringVar(&runOpts.BinDir, "bin-dir", "../bin", "directory holding the native tool binaries")

	cmd.AddCommand(NewListCommand(rootOpts))
	cmd.AddCommand(NewHistoryCommand(rootOpts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
