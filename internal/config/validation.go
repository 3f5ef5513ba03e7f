package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/sitepack/internal/errors"
)

// Targets lists the accepted build.target values.
var Targets = []string{"es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "esnext"}

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("      %s\n", suggestion))
			}
		}
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("      %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// validateConfig returns the first validation error as a config error
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if !result.HasErrors() {
		return nil
	}

	first := result.Errors[0]
	return errors.NewConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s: %s", first.Field, first.Message))
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateTreeConfig(config, result)
	validateEntriesConfig(&config.Entries, result)
	validateBuildConfig(&config.Build, result)
	validateStyleConfig(&config.Style, result)
	validateWatchConfig(&config.Watch, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateTreeConfig(config *Config, result *ValidationResult) {
	trees := []struct{ field, path string }{
		{"source", config.Source},
		{"output", config.Output},
	}
	for _, tree := range trees {
		if err := validatePath(tree.path); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   tree.field,
				Value:   tree.path,
				Message: err.Error(),
				Suggestions: []string{
					"Use a relative path inside the project",
					"Avoid parent directory references (..)",
				},
			})
		}
	}
	if result.HasErrors() {
		return
	}

	source := filepath.Clean(config.Source)
	output := filepath.Clean(config.Output)
	if output == "." || source == output || isWithin(source, output) || isWithin(output, source) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "output",
			Value:   config.Output,
			Message: fmt.Sprintf("output %q overlaps source %q; it is removed before every build", config.Output, config.Source),
			Suggestions: []string{
				"Use sibling directories such as 'src' and 'dist'",
			},
		})
	}

	for i, ext := range config.CopyExtensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("copy_extensions[%d]", i),
				Value:   ext,
				Message: fmt.Sprintf("extension %q has no leading dot and matches nothing", ext),
				Suggestions: []string{
					fmt.Sprintf("Use '.%s'", ext),
				},
			})
		}
	}
}

func validateEntriesConfig(config *EntriesConfig, result *ValidationResult) {
	if _, err := regexp.Compile(config.HostPattern); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "entries.host_pattern",
			Value:   config.HostPattern,
			Message: err.Error(),
			Suggestions: []string{
				`The default is '[.](html|php)$'`,
			},
		})
	}

	owners := make(map[string]string, len(config.Aliases))
	for _, key := range sortedKeys(config.Aliases) {
		candidates := config.Aliases[key]
		ext := aliasExt(key)
		if other, dup := owners[ext]; dup {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "entries.aliases." + key,
				Value:   key,
				Message: fmt.Sprintf("alias %q names the same extension as %q", key, other),
				Suggestions: []string{
					"Keep one key per extension",
				},
			})
		} else {
			owners[ext] = key
		}
		if len(candidates) == 0 {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "entries.aliases." + key,
				Value:   candidates,
				Message: "alias has no candidate extensions",
			})
		}
		for _, candidate := range candidates {
			if candidate == "" || strings.ContainsAny(candidate, `/\`) {
				result.Errors = append(result.Errors, ValidationError{
					Field:   "entries.aliases." + key,
					Value:   candidate,
					Message: fmt.Sprintf("invalid candidate extension %q", candidate),
				})
			}
		}
	}
}

func validateBuildConfig(config *BuildConfig, result *ValidationResult) {
	if !contains(Targets, strings.ToLower(config.Target)) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build.target",
			Value:   config.Target,
			Message: fmt.Sprintf("unknown target %q", config.Target),
			Suggestions: []string{
				"Available targets: " + strings.Join(Targets, ", "),
			},
		})
	}

	if !strings.Contains(config.AssetNames, "[hash]") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.asset_names",
			Value:   config.AssetNames,
			Message: "asset names without [hash] may collide",
		})
	}
}

func validateStyleConfig(config *StyleConfig, result *ValidationResult) {
	if strings.ContainsAny(config.Manifest, `/\`) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "style.manifest",
			Value:   config.Manifest,
			Message: "manifest must be a file name",
		})
	}

	if config.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "style.timeout",
			Value:   config.Timeout,
			Message: "timeout cannot be negative",
		})
	}

	if config.DartSass != "" {
		if _, err := os.Stat(config.DartSass); err != nil {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   "style.dart_sass",
				Value:   config.DartSass,
				Message: "dart-sass binary not found",
				Suggestions: []string{
					"Leave empty to use 'sass' from PATH",
				},
			})
		}
	}
}

func validateWatchConfig(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Debounce,
			Message: "debounce cannot be negative",
		})
	}
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

// isWithin reports whether child is strictly below parent
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
