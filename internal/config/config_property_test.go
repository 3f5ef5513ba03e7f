//go:build property
// +build property

package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestConfigurationProperties tests configuration validation properties
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: sibling source and output trees with a known target validate
	properties.Property("sibling trees are valid", prop.ForAll(
		func(source, output string, target int) bool {
			if source == output {
				return true
			}

			cfg := Default()
			cfg.Source = source
			cfg.Output = output
			cfg.Build.Target = Targets[target]

			return validateConfig(cfg) == nil
		},
		gen.RegexMatch(`^[a-z][a-z0-9_]{0,10}$`),
		gen.RegexMatch(`^[a-z][a-z0-9_]{0,10}$`),
		gen.IntRange(0, len(Targets)-1),
	))

	// Property: an output nested in the source is always rejected
	properties.Property("nested output is rejected", prop.ForAll(
		func(source, child string) bool {
			cfg := Default()
			cfg.Source = source
			cfg.Output = filepath.Join(source, child)

			return validateConfig(cfg) != nil
		},
		gen.RegexMatch(`^[a-z][a-z0-9]{0,8}$`),
		gen.RegexMatch(`^[a-z][a-z0-9]{0,8}$`),
	))

	// Property: any path escaping the project is rejected
	properties.Property("traversal is rejected", prop.ForAll(
		func(depth int, name string) bool {
			path := strings.Repeat("../", depth) + name
			return validatePath(path) != nil
		},
		gen.IntRange(1, 5),
		gen.RegexMatch(`^[a-z]{1,8}$`),
	))

	// Property: negative debounce never validates, non-negative always does
	properties.Property("debounce sign", prop.ForAll(
		func(ms int64) bool {
			cfg := Default()
			cfg.Watch.Debounce = time.Duration(ms) * time.Millisecond

			err := validateConfig(cfg)
			if ms < 0 {
				return err != nil
			}
			return err == nil
		},
		gen.Int64Range(-10000, 10000),
	))

	// Property: alias keys map to dotted extensions regardless of spelling
	properties.Property("alias key normalization", prop.ForAll(
		func(ext string, dotted bool) bool {
			key := ext
			if dotted {
				key = "." + ext
			}
			cfg := &Config{Entries: EntriesConfig{Aliases: map[string][]string{key: {"x"}}}}

			table := cfg.AliasTable()
			if ext == NoExtensionKey {
				_, ok := table[""]
				return ok
			}
			_, ok := table["."+ext]
			return ok && len(table) == 1
		},
		gen.RegexMatch(`^[a-z]{1,6}$`),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
