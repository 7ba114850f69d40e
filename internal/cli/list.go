package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varstore/regress/internal/harness"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Catalog string
}

// ListEntry describes one catalog entry.
type ListEntry struct {
	Name    string `json:"name"`
	Loader  string `json:"loader"`
	Queries int    `json:"queries"`
	Stages  int    `json:"stages"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog entries",
		Long: `List the catalog entries the bare command would run.

Shows each entry's loader kind, the number of query parameter sets, and the
number of stages it executes (one load plus every declared query).

Examples:
  regress list
  regress list --catalog cases.yaml
  regress list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "YAML catalog file (default: built-in catalog)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	tests := harness.BuiltinCatalog()
	if opts.Catalog != "" {
		var err error
		tests, err = harness.LoadCatalog(opts.Catalog)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
	}

	entries := make([]ListEntry, 0, len(tests))
	for _, tc := range tests {
		stages := 1 // the load stage always runs
		for _, qp := range tc.QueryParams {
			stages += len(qp.Golden)
		}
		entries = append(entries, ListEntry{
			Name:    tc.Name,
			Loader:  string(tc.Loader),
			Queries: len(tc.QueryParams),
			Stages:  stages,
		})
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: entries})
	}

	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "%-40s %-21s %d queries, %d stages\n", e.Name, e.Loader, e.Queries, e.Stages)
	}
	fmt.Fprintf(w, "\n%d catalog entries\n", len(entries))
	return nil
}
