package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var buildFlags *BuildFlags

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the site into the output directory",
	Long: `Clear the output directory, copy the static files across and bundle every
script and stylesheet referenced from the pages.

Examples:
  sitepack build
  sitepack build --minify --sourcemap
  sitepack build --target es2017 --output public`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, buildBindings)
	},
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildFlags = AddBuildFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signalContext(context.Background())
	defer stop()

	result, err := sess.orchestrator.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built %d entry point(s) into %s in %s",
		result.Entries, sess.config.Output, result.Duration.Round(1e6))
	if result.Warnings > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " with %d warning(s)", result.Warnings)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
