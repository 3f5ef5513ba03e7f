package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by the listing commands
var outputFormats = []string{"table", "json", "yaml"}

// BuildFlags are the bundler options shared by build and watch
type BuildFlags struct {
	Minify    bool
	Sourcemap bool
	Bundle    bool
	Target    string
	Output    string
}

// buildBindings maps build flags onto configuration keys
var buildBindings = map[string]string{
	"minify":    "build.minify",
	"sourcemap": "build.sourcemap",
	"bundle":    "build.bundle",
	"target":    "build.target",
	"output":    "output",
}

// AddBuildFlags adds the bundler flags to a command
func AddBuildFlags(cmd *cobra.Command) *BuildFlags {
	flags := &BuildFlags{}
	cmd.Flags().BoolVar(&flags.Minify, "minify", false, "Minify scripts and styles")
	cmd.Flags().BoolVar(&flags.Sourcemap, "sourcemap", false, "Write linked source maps")
	cmd.Flags().BoolVar(&flags.Bundle, "bundle", true, "Inline imported modules")
	cmd.Flags().StringVar(&flags.Target, "target", "", "JavaScript target (es2015..es2022, esnext)")
	cmd.Flags().StringVar(&flags.Output, "output", "", "Output directory")
	return flags
}

// bindFlags binds flags to viper keys. Commands call it when they run, not
// in init, so two commands sharing a key do not steal each other's flag.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, key := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("cannot bind --%s: %w", flagName, err)
		}
	}
	return nil
}

// AddFormatFlag adds -o/--output for the listing commands
func AddFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", "table", "Output format ("+strings.Join(outputFormats, "|")+")")
	AddFlagValidation(cmd, "output", func(value string) error {
		return ValidateFormat(value, outputFormats)
	})
}

// AddFlagValidation wraps a flag so invalid values fail at parse time
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if err := v.validator(val); err != nil {
		return err
	}
	return v.Value.Set(val)
}

// ValidateFormat checks value against the supported formats
func ValidateFormat(value string, supported []string) error {
	for _, s := range supported {
		if strings.EqualFold(value, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", value, strings.Join(supported, ", "))
}
