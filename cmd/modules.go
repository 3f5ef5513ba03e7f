package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepack/internal/stylemod"
)

var modulesFormat string

var modulesCmd = &cobra.Command{
	Use:     "modules",
	Aliases: []string{"m"},
	Short:   "List the style entries of installed packages",
	Long: `Print the style module index built from the modules directory: for each
package, the entry used for bare imports of any dialect, the plain CSS entry
and the Sass entry.

Examples:
  sitepack modules
  sitepack modules -o yaml`,
	Args: cobra.NoArgs,
	RunE: runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	AddFormatFlag(modulesCmd, &modulesFormat)
}

func runModules(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	index := sess.orchestrator.Index()
	sess.logger.Debug(context.Background(), "Module index", "dir", index.Dir(), "packages", index.Len())

	entries := index.Entries()
	if len(entries) == 0 && modulesFormat == "table" {
		fmt.Fprintf(cmd.OutOrStdout(), "No style packages found in %s.\n", sess.config.Style.ModulesDir)
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), modulesFormat, entries, func() table {
		return modulesTable(entries)
	})
}

func modulesTable(entries []stylemod.Entry) table {
	t := table{headers: []string{"name", "any_entry", "plain_entry", "sass_entry"}}
	for _, e := range entries {
		t.rows = append(t.rows, []string{e.Name, orDash(e.Any), orDash(e.Plain), orDash(e.Sass)})
	}
	return t
}
