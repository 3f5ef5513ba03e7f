// Package config provides configuration management for sitepack using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the SITEPACK_ prefix, defaults and validation. It covers the
// source and output trees, entry discovery, bundler options, the style module
// index, the dart-sass compiler and watch mode.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/sitepack/internal/scanner"
)

// NoExtensionKey is the alias key for references without an extension.
// Viper splits keys on dots, so alias keys are written without one.
const NoExtensionKey = "noext"

type Config struct {
	Source         string        `mapstructure:"source" yaml:"source"`
	Output         string        `mapstructure:"output" yaml:"output"`
	Serve          string        `mapstructure:"serve" yaml:"serve,omitempty"`
	CopyExtensions []string      `mapstructure:"copy_extensions" yaml:"copy_extensions"`
	Protect        []string      `mapstructure:"protect" yaml:"protect"`
	Entries        EntriesConfig `mapstructure:"entries" yaml:"entries"`
	Build          BuildConfig   `mapstructure:"build" yaml:"build"`
	Style          StyleConfig   `mapstructure:"style" yaml:"style"`
	Watch          WatchConfig   `mapstructure:"watch" yaml:"watch"`
}

type EntriesConfig struct {
	HostPattern string              `mapstructure:"host_pattern" yaml:"host_pattern"`
	Aliases     map[string][]string `mapstructure:"aliases" yaml:"aliases"`
}

type BuildConfig struct {
	Target     string `mapstructure:"target" yaml:"target"`
	Bundle     bool   `mapstructure:"bundle" yaml:"bundle"`
	Minify     bool   `mapstructure:"minify" yaml:"minify"`
	Sourcemap  bool   `mapstructure:"sourcemap" yaml:"sourcemap"`
	AssetNames string `mapstructure:"asset_names" yaml:"asset_names"`
}

type StyleConfig struct {
	ModulesDir string        `mapstructure:"modules_dir" yaml:"modules_dir"`
	Manifest   string        `mapstructure:"manifest" yaml:"manifest"`
	Fields     []string      `mapstructure:"fields" yaml:"fields"`
	DartSass   string        `mapstructure:"dart_sass" yaml:"dart_sass,omitempty"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Ignore   []string      `mapstructure:"ignore" yaml:"ignore"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg, func(string) bool { return false })
	return cfg
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("cannot decode configuration: %w", err)
	}

	// Flags bound through viper are not always visible to Unmarshal.
	if viper.IsSet("build.bundle") {
		config.Build.Bundle = viper.GetBool("build.bundle")
	}
	if viper.IsSet("build.minify") {
		config.Build.Minify = viper.GetBool("build.minify")
	}
	if viper.IsSet("build.sourcemap") {
		config.Build.Sourcemap = viper.GetBool("build.sourcemap")
	}
	if viper.IsSet("copy_extensions") && len(config.CopyExtensions) == 0 {
		config.CopyExtensions = viper.GetStringSlice("copy_extensions")
	}
	if viper.IsSet("style.fields") && len(config.Style.Fields) == 0 {
		config.Style.Fields = viper.GetStringSlice("style.fields")
	}

	applyDefaults(&config, viper.IsSet)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills every unset value. isSet reports whether a key was
// configured explicitly, for values whose zero value is meaningful.
func applyDefaults(config *Config, isSet func(key string) bool) {
	if config.Source == "" {
		config.Source = "src"
	}
	if config.Output == "" {
		config.Output = "dist"
	}
	if !isSet("copy_extensions") && len(config.CopyExtensions) == 0 {
		config.CopyExtensions = []string{".html", ".php", ".ico", ".txt", ".json", ".webmanifest"}
	}
	if !isSet("protect") && len(config.Protect) == 0 {
		config.Protect = []string{".git"}
	}

	if config.Entries.HostPattern == "" {
		config.Entries.HostPattern = scanner.DefaultHostPattern
	}
	if len(config.Entries.Aliases) == 0 {
		config.Entries.Aliases = map[string][]string{}
		for ext, candidates := range scanner.DefaultAliases() {
			config.Entries.Aliases[strings.TrimPrefix(ext, ".")] = candidates
		}
	}

	if config.Build.Target == "" {
		config.Build.Target = "es2020"
	}
	if !isSet("build.bundle") {
		config.Build.Bundle = true
	}
	if config.Build.AssetNames == "" {
		config.Build.AssetNames = "-[name]-[hash]"
	}

	if config.Style.ModulesDir == "" {
		config.Style.ModulesDir = "node_modules"
	}
	if config.Style.Manifest == "" {
		config.Style.Manifest = "package.json"
	}
	if len(config.Style.Fields) == 0 {
		config.Style.Fields = []string{"scss", "sass", "style", "main"}
	}
	if config.Style.Timeout == 0 {
		config.Style.Timeout = 30 * time.Second
	}

	if !isSet("watch.debounce") && config.Watch.Debounce == 0 {
		config.Watch.Debounce = 300 * time.Millisecond
	}
	if !isSet("watch.ignore") && len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = []string{"node_modules", ".git"}
	}
}

// AliasTable converts the configured aliases into the scanner's table.
// Keys may be given with or without a leading dot; NoExtensionKey stands for
// references without an extension.
func (c *Config) AliasTable() scanner.AliasTable {
	raw := make(map[string][]string, len(c.Entries.Aliases))
	for _, key := range sortedKeys(c.Entries.Aliases) {
		ext := aliasExt(key)
		if _, taken := raw[ext]; taken {
			continue
		}
		raw[ext] = c.Entries.Aliases[key]
	}
	return scanner.NewAliasTable(raw)
}

// aliasExt maps an alias key to the extension it stands for: ".JS" and "js"
// give ".js", NoExtensionKey gives "".
func aliasExt(key string) string {
	ext := strings.ToLower(strings.TrimPrefix(key, "."))
	if ext == NoExtensionKey {
		return ""
	}
	return "." + ext
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
