package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitepack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging the config file, SITEPACK_*
environment variables and defaults, followed by any validation warnings.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# %s\n", used)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	out.Write(data)

	if result := config.ValidateConfigWithDetails(cfg); result.HasWarnings() {
		fmt.Fprintf(out, "\n%s", result.String())
	}
	return nil
}
