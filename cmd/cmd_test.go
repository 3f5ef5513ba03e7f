package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/sitepack/internal/config"
	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/scanner"
	"github.com/conneroisu/sitepack/internal/stylemod"
)

// inSite creates files under a fresh working directory and resets viper
func inSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag of the command tree to its default, since
// the commands are package globals shared by the tests.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

var basicSite = map[string]string{
	"src/index.html":   `<html><head><link rel="stylesheet" href="style.css"></head><body><script src="app.js"></script></body></html>`,
	"src/app.js":       `console.log("hello")`,
	"src/style.css":    `body { color: red }`,
	"src/robots.txt":   "User-agent: *",
	"src/notes.md":     "not copied",
	"src/sub/page.php": `<?php ?><script src="../app.js"></script>`,
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "serve", "watch", "entries", "modules", "init", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"host", "Host"},
		{"plain_entry", "Plain Entry"},
		{"any_entry", "Any Entry"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, header(tt.in))
		})
	}
}

func TestWriteOutput(t *testing.T) {
	entries := []scanner.Entry{{Host: "src/index.html", Reference: "app.js", Path: "src/app.js"}}
	render := func() table { return entriesTable(entries) }

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "table", entries, render))
		assert.Contains(t, buf.String(), "Host")
		assert.Contains(t, buf.String(), "----")
		assert.Contains(t, buf.String(), "src/app.js")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "json", entries, render))
		var decoded []scanner.Entry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, entries, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "YAML", entries, render))
		var decoded []scanner.Entry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, entries, decoded)
	})

	t.Run("unknown", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeOutput(&buf, "csv", entries, render))
	})
}

func TestModulesTable(t *testing.T) {
	tbl := modulesTable([]stylemod.Entry{{Name: "a", Any: "/m/a/index.css", Plain: "/m/a/index.css"}})
	assert.Equal(t, []string{"name", "any_entry", "plain_entry", "sass_entry"}, tbl.headers)
	assert.Equal(t, [][]string{{"a", "/m/a/index.css", "/m/a/index.css", "-"}}, tbl.rows)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("json", outputFormats))
	assert.NoError(t, ValidateFormat("Table", outputFormats))
	err := ValidateFormat("xml", outputFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, yaml")
}

func TestFlagValidation(t *testing.T) {
	var format string
	c := &cobra.Command{Use: "x"}
	AddFormatFlag(c, &format)

	assert.NoError(t, c.Flags().Set("output", "yaml"))
	assert.Equal(t, "yaml", format)
	assert.Error(t, c.Flags().Set("output", "xml"))
	assert.Equal(t, "yaml", format)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config",
			err:  errors.NewConfigError(errors.ErrCodeConfigInvalid, "bad target"),
			want: "Configuration error: [ERR_CONFIG_INVALID] bad target",
		},
		{
			name: "resolution inside a build failure",
			err: errors.NewBuildError(errors.ErrCodeBuildFailed, "build failed with 1 error(s)",
				errors.NewManifestEntryError("theme")),
			want: "Style import error: ",
		},
		{
			name: "other",
			err:  fmt.Errorf("disk full"),
			want: "Error: disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(describeError(tt.err), tt.want), describeError(tt.err))
		})
	}
	assert.Contains(t, describeError(tests[1].err), "sitepack modules")
}

func TestNewLogger(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := newLogger()
	assert.NoError(t, err)

	viper.Set("log-level", "loud")
	_, err = newLogger()
	assert.Error(t, err)

	viper.Set("log-level", "debug")
	viper.Set("log-format", "xml")
	_, err = newLogger()
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := inSite(t, nil)

	out, err := execute(t, "init", "--source", "site", "--output", "public")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote .sitepack.yml")
	assert.DirExists(t, filepath.Join(dir, "site"))

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultFileName))
	require.NoError(t, err)
	var written config.Config
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, "site", written.Source)
	assert.Equal(t, "public", written.Output)

	_, err = execute(t, "init", "--source", "site", "--output", "public")
	assert.Error(t, err, "existing file is kept without --force")

	_, err = execute(t, "init", "--force", "--source", "site", "--output", "public")
	assert.NoError(t, err)
}

func TestEntriesCommand(t *testing.T) {
	inSite(t, basicSite)

	out, err := execute(t, "entries", "-o", "json")
	require.NoError(t, err)

	var entries []scanner.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	paths := scanner.Paths(entries)
	assert.Len(t, paths, 3)
	assert.Contains(t, paths, filepath.Join("src", "app.js"))
	assert.Contains(t, paths, filepath.Join("src", "style.css"))
}

func TestModulesCommand(t *testing.T) {
	inSite(t, map[string]string{
		"src/index.html":                  "",
		"node_modules/theme/package.json": `{"name": "theme", "style": "theme.css"}`,
		"node_modules/theme/theme.css":    "a { color: blue }",
	})

	out, err := execute(t, "modules", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Plain Entry")
	assert.Contains(t, out, "theme")
	assert.Contains(t, out, "theme.css")
}

func TestBuildCommand(t *testing.T) {
	dir := inSite(t, basicSite)

	out, err := execute(t, "build", "--output", "public", "--minify")
	require.NoError(t, err)
	assert.Contains(t, out, "into public")

	assert.FileExists(t, filepath.Join(dir, "public", "index.html"))
	assert.FileExists(t, filepath.Join(dir, "public", "robots.txt"))
	assert.FileExists(t, filepath.Join(dir, "public", "app.js"))
	assert.FileExists(t, filepath.Join(dir, "public", "style.css"))
	assert.NoFileExists(t, filepath.Join(dir, "public", "notes.md"))

	css, err := os.ReadFile(filepath.Join(dir, "public", "style.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), "color:red")
}

func TestBuildCommandRejectsBadTarget(t *testing.T) {
	inSite(t, basicSite)

	_, err := execute(t, "build", "--target", "es1999")
	assert.Error(t, err)
}

func TestServeCommandRejectsBadAddress(t *testing.T) {
	inSite(t, basicSite)

	_, err := execute(t, "serve", "localhost:notaport")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	inSite(t, map[string]string{
		config.DefaultFileName: "source: site\noutput: out\n",
	})

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "source: site")
	assert.Contains(t, out, "output: out")
	assert.Contains(t, out, "host_pattern")
}

func TestVersionCommand(t *testing.T) {
	inSite(t, nil)

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	resetFlags(rootCmd)

	out, err = execute(t, "version", "-o", "json")
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "go_version")
}
