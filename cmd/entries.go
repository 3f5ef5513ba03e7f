package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepack/internal/scanner"
)

var entriesFormat string

var entriesCmd = &cobra.Command{
	Use:     "entries",
	Aliases: []string{"e", "ls"},
	Short:   "List the entry points referenced from the source tree",
	Long: `Scan the host pages under the source directory and print every script and
stylesheet reference that resolves to a file, in discovery order. A file
referenced from several pages is listed once per reference.

Examples:
  sitepack entries
  sitepack entries -o json`,
	Args: cobra.NoArgs,
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)
	AddFormatFlag(entriesCmd, &entriesFormat)
}

func runEntries(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signalContext(context.Background())
	defer stop()

	entries, err := sess.orchestrator.Entries(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 && entriesFormat == "table" {
		fmt.Fprintln(cmd.OutOrStdout(), "No entry points found.")
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), entriesFormat, entries, func() table {
		return entriesTable(entries)
	})
}

func entriesTable(entries []scanner.Entry) table {
	t := table{headers: []string{"host", "reference", "path"}}
	for _, e := range entries {
		t.rows = append(t.rows, []string{e.Host, e.Reference, e.Path})
	}
	return t
}
