package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/sitepack/internal/config"
)

var (
	initForce  bool
	initSource string
	initOutput string
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a default .sitepack.yml",
	Long: `Write the default configuration to .sitepack.yml in the working directory
and create the source directory when it is missing.

Examples:
  sitepack init
  sitepack init --source site --output public
  sitepack init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file")
	initCmd.Flags().StringVar(&initSource, "source", "", "Source directory")
	initCmd.Flags().StringVar(&initOutput, "output", "", "Output directory")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if initSource != "" {
		cfg.Source = initSource
	}
	if initOutput != "" {
		cfg.Output = initOutput
	}

	result := config.ValidateConfigWithDetails(cfg)
	if result.HasErrors() {
		return fmt.Errorf("invalid configuration:\n%s", result.String())
	}

	if err := cfg.WriteFile(config.DefaultFileName, initForce); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Source, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Source, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (source %s, output %s)\n", config.DefaultFileName, cfg.Source, cfg.Output)
	return nil
}
