// Package cmd provides the sitepack command-line interface.
//
// Configuration is read from several sources, highest priority first:
//
//  1. command-line flags (--minify, --target, ...)
//  2. SITEPACK_* environment variables (SITEPACK_BUILD_MINIFY=true)
//  3. the file named by --config or SITEPACK_CONFIG_FILE
//  4. .sitepack.yml in the working directory
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/sitepack/internal/build"
	"github.com/conneroisu/sitepack/internal/config"
	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitepack",
	Short: "Bundle the scripts and styles a static site references",
	Long: `sitepack scans a static site for the scripts and stylesheets its pages
reference, bundles them with esbuild, compiles Sass with dart-sass and mirrors
the remaining static files into the output directory.

Quick Start:
  sitepack init                   Write a default .sitepack.yml
  sitepack build                  Build src/ into dist/
  sitepack serve :8000            Serve src/ with in-memory bundles
  sitepack watch                  Rebuild on every change
  sitepack entries                List the discovered entry points`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), describeError(err))
	}
	return err
}

// describeError prefixes a failure with a hint for its category
func describeError(err error) string {
	switch {
	case errors.IsConfigError(err):
		return "Configuration error: " + err.Error() +
			"\n  Check .sitepack.yml, SITEPACK_* variables and flags; `sitepack config` prints the merged result."
	case errors.IsResolveError(err):
		return "Style import error: " + err.Error() +
			"\n  Check the package's style fields; `sitepack modules` lists what was indexed."
	default:
		return "Error: " + err.Error()
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sitepack.yml, can also use SITEPACK_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the config file and the SITEPACK_ environment.
// A missing config file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SITEPACK_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(strings.TrimSuffix(config.DefaultFileName, ".yml"))
	}

	viper.SetEnvPrefix("SITEPACK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logger selected by --log-level and --log-format
func newLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	format := viper.GetString("log-format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unknown log format %q (supported: text, json)", format)
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: format,
		Output: os.Stderr,
	}), nil
}

// session bundles what the build-driving commands share
type session struct {
	config       *config.Config
	logger       logging.Logger
	orchestrator *build.Orchestrator
}

// openSession loads the configuration and assembles the orchestrator
func openSession() (*session, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	orchestrator, err := build.New(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return &session{config: cfg, logger: logger, orchestrator: orchestrator}, nil
}

func (s *session) Close() {
	if err := s.orchestrator.Close(); err != nil {
		s.logger.Warn(context.Background(), err, "Failed to stop style compiler")
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
