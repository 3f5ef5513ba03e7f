// Package scanner discovers bundler entry points in a source tree.
//
// The scanner walks the tree breadth-first for host files (markup and
// templates), extracts every src= and href= attribute value from their raw
// contents, and infers the concrete files each reference stands for through
// an extension alias table. Every candidate that exists on disk becomes an
// entry point; nothing is deduplicated, so a reference backed by both
// app.js and app.ts yields two entries.
package scanner

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/sitepack/internal/logging"
)

// referencePattern matches reference attribute values in host files.
var referencePattern = regexp.MustCompile(`\s(?:src|href)=["']([^"']+)`)

// DefaultHostPattern matches the host files scanned for references.
const DefaultHostPattern = `[.](html|php)$`

// Filter decides whether a path takes part in a scan
type Filter func(path string) bool

// MatchPattern builds a Filter from a regular expression
func MatchPattern(re *regexp.Regexp) Filter {
	return func(path string) bool {
		return re.MatchString(path)
	}
}

// MatchAll accepts every path
func MatchAll(string) bool { return true }

// Reference is one attribute value found in a host file
type Reference struct {
	Host  string `json:"host" yaml:"host"`
	Value string `json:"value" yaml:"value"`
}

// Entry is one resolved entry point together with the reference it came from
type Entry struct {
	Host      string `json:"host" yaml:"host"`
	Reference string `json:"reference" yaml:"reference"`
	Path      string `json:"path" yaml:"path"`
}

// Paths returns the entry point paths in discovery order
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// EntryScanner discovers entry points under one or more roots.
//
// An EntryScanner holds no per-scan state and may be reused, but a single
// Discover call is not reentrant.
type EntryScanner struct {
	aliases    AliasTable
	hostFilter Filter
	dirFilter  Filter
	logger     logging.Logger
}

// Option configures an EntryScanner
type Option func(*EntryScanner)

// WithHostFilter sets the filter host files must pass
func WithHostFilter(filter Filter) Option {
	return func(s *EntryScanner) {
		if filter != nil {
			s.hostFilter = filter
		}
	}
}

// WithDirFilter sets the filter subdirectories must pass to be descended into
func WithDirFilter(filter Filter) Option {
	return func(s *EntryScanner) {
		if filter != nil {
			s.dirFilter = filter
		}
	}
}

// WithLogger sets the scanner logger
func WithLogger(logger logging.Logger) Option {
	return func(s *EntryScanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEntryScanner creates a scanner for the given alias table
func NewEntryScanner(aliases AliasTable, opts ...Option) *EntryScanner {
	s := &EntryScanner{
		aliases:    NewAliasTable(aliases),
		hostFilter: MatchPattern(regexp.MustCompile(DefaultHostPattern)),
		dirFilter:  MatchAll,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists the host files under roots, breadth-first. Directories that
// cannot be read are skipped.
func (s *EntryScanner) Scan(ctx context.Context, roots ...string) ([]string, error) {
	var hosts []string
	frontier := NewFrontier(roots...)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir, ok := frontier.Pop()
		if !ok {
			break
		}

		names, err := readDirNames(dir)
		if err != nil {
			s.logger.Debug(ctx, "skipping unreadable directory", "dir", dir, "error", err.Error())
			continue
		}

		for _, name := range names {
			p := dir + string(filepath.Separator) + name
			// Stat rather than Lstat so symlinked files and directories are followed.
			info, err := os.Stat(p)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() && s.hostFilter(p) {
				hosts = append(hosts, p)
			}
			if info.IsDir() && s.dirFilter(p) {
				frontier.Push(p)
			}
		}
	}

	s.logger.Debug(ctx, "host scan complete", "hosts", len(hosts), "dirs", frontier.Visited())
	return hosts, nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// ExtractReferences returns every reference attribute value in content, in
// document order.
func ExtractReferences(host string, content []byte) []Reference {
	matches := referencePattern.FindAllSubmatch(content, -1)
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{Host: host, Value: string(m[1])})
	}
	return refs
}

// Resolve infers the entry files a reference stands for. Every candidate
// extension that exists on disk is returned, in alias table order.
func (s *EntryScanner) Resolve(ref Reference) []Entry {
	refDir, file := path.Split(ref.Value)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)

	candidates := s.aliases.Candidates(ext)
	if len(candidates) == 0 {
		return nil
	}

	hostDir := filepath.Dir(ref.Host)
	var entries []Entry
	for _, candidate := range candidates {
		p := filepath.Join(hostDir, filepath.FromSlash(refDir), base+"."+candidate)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			entries = append(entries, Entry{Host: ref.Host, Reference: ref.Value, Path: p})
		}
	}
	return entries
}

// Discover scans roots for host files and resolves every reference they
// contain into entry points. Unreadable host files are skipped.
func (s *EntryScanner) Discover(ctx context.Context, roots ...string) ([]Entry, error) {
	op := logging.StartOperation(s.logger, "discover")
	hosts, err := s.Scan(ctx, roots...)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, host := range hosts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(host)
		if err != nil {
			s.logger.Debug(ctx, "skipping unreadable host file", "host", host, "error", err.Error())
			continue
		}
		for _, ref := range ExtractReferences(host, content) {
			entries = append(entries, s.Resolve(ref)...)
		}
	}

	op.End(ctx, "entry discovery complete", "hosts", len(hosts), "entries", len(entries))
	return entries, nil
}
