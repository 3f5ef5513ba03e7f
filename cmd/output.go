package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var titleCaser = cases.Title(language.English)

// table is the plain-text rendering of a listing
type table struct {
	headers []string
	rows    [][]string
}

// header title-cases a snake_case column name: "plain_entry" -> "Plain Entry"
func header(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// writeOutput renders data as JSON or YAML, or as a table built by render
func writeOutput(w io.Writer, format string, data interface{}, render func() table) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(data)
	case "table", "":
		return writeTable(w, render())
	default:
		return ValidateFormat(format, outputFormats)
	}
}

func writeTable(w io.Writer, t table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	titles := make([]string, len(t.headers))
	rules := make([]string, len(t.headers))
	for i, h := range t.headers {
		titles[i] = header(h)
		rules[i] = strings.Repeat("-", len(titles[i]))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// orDash keeps empty table cells visible
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
