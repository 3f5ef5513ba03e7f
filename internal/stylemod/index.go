// Package stylemod indexes the style entry files of the packages in a
// dependency directory (node_modules).
//
// Each package's manifest is searched field by field in a fixed priority order
// and the first existing file that matches a dialect filter becomes that
// package's entry for the dialect. The index is built once and is read-only
// afterwards.
package stylemod

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/sitepack/internal/logging"
)

// DefaultFields is the manifest field priority order, most Sass-specific first.
var DefaultFields = []string{"scss", "sass", "style", "main"}

// DefaultManifest is the manifest file name inside each package directory.
const DefaultManifest = "package.json"

// Dialect filters applied to a manifest field value.
type dialectFilter func(entry string) bool

func anyDialect(string) bool { return true }

func plainDialect(entry string) bool { return strings.HasSuffix(entry, ".css") }

func sassDialect(entry string) bool { return strings.HasSuffix(entry, ".scss") }

// Entry is everything the index knows about one package.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Any   string `json:"any,omitempty" yaml:"any,omitempty"`
	Plain string `json:"plain,omitempty" yaml:"plain,omitempty"`
	Sass  string `json:"sass,omitempty" yaml:"sass,omitempty"`
}

// Index maps package names to absolute style entry paths.
type Index struct {
	dir   string
	any   map[string]string
	plain map[string]string
	sass  map[string]string
	// plainFiles is the reverse of plain, keyed by path
	plainFiles map[string]string
}

type options struct {
	manifest string
	fields   []string
	logger   logging.Logger
}

// Option configures Build
type Option func(*options)

// WithManifest overrides the manifest file name
func WithManifest(name string) Option {
	return func(o *options) {
		if name != "" {
			o.manifest = name
		}
	}
}

// WithFields overrides the manifest field priority order
func WithFields(fields []string) Option {
	return func(o *options) {
		if len(fields) > 0 {
			o.fields = fields
		}
	}
}

// WithLogger sets the logger used for skipped packages
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build scans dir once. A missing dir yields an empty index; an existing dir
// that cannot be listed is an error. Unreadable or malformed manifests are
// skipped.
func Build(dir string, opts ...Option) (*Index, error) {
	o := options{
		manifest: DefaultManifest,
		fields:   DefaultFields,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		dir:        absDir,
		any:        make(map[string]string),
		plain:      make(map[string]string),
		sass:       make(map[string]string),
		plainFiles: make(map[string]string),
	}

	packages, err := listPackages(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}

	for _, pkgDir := range packages {
		idx.add(pkgDir, o)
	}

	return idx, nil
}

// listPackages returns package directories, descending one level into
// @scope directories.
func listPackages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var packages []string
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if strings.HasPrefix(name, ".") || !isDir(path) {
			continue
		}
		if strings.HasPrefix(name, "@") {
			scoped, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, s := range scoped {
				if p := filepath.Join(path, s.Name()); isDir(p) {
					packages = append(packages, p)
				}
			}
			continue
		}
		packages = append(packages, path)
	}
	return packages, nil
}

// isDir follows symlinks, so linked packages (pnpm, npm link) are indexed.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// add checks one package against the three dialect filters.
func (idx *Index) add(pkgDir string, o options) {
	manifest, ok := readManifest(filepath.Join(pkgDir, o.manifest))
	if !ok {
		o.logger.Debug(context.Background(), "skipping package without readable manifest", "dir", pkgDir)
		return
	}
	name, _ := manifest["name"].(string)
	if name == "" {
		o.logger.Debug(context.Background(), "skipping package without a name", "dir", pkgDir)
		return
	}

	if path, _, ok := lookupField(pkgDir, manifest, o.fields, anyDialect); ok {
		idx.any[name] = path
	}

	// A package belongs to at most one restricted dialect: the one its
	// manifest resolves to first.
	plainPath, plainRank, plainOK := lookupField(pkgDir, manifest, o.fields, plainDialect)
	sassPath, sassRank, sassOK := lookupField(pkgDir, manifest, o.fields, sassDialect)
	switch {
	case plainOK && (!sassOK || plainRank < sassRank):
		idx.plain[name] = plainPath
		idx.plainFiles[plainPath] = name
	case sassOK:
		idx.sass[name] = sassPath
	}
}

func readManifest(path string) (map[string]interface{}, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	manifest := make(map[string]interface{})
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, false
	}
	return manifest, true
}

// lookupField returns the first field value that passes filter and exists on disk,
// along with the position of that field in the priority order.
func lookupField(pkgDir string, manifest map[string]interface{}, fields []string, filter dialectFilter) (string, int, bool) {
	for rank, field := range fields {
		value, _ := manifest[field].(string)
		if value == "" || !filter(value) {
			continue
		}
		path := filepath.Join(pkgDir, value)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		return path, rank, true
	}
	return "", 0, false
}

// Dir returns the absolute dependency directory the index was built from
func (idx *Index) Dir() string {
	return idx.dir
}

// Any returns the entry of name under any dialect
func (idx *Index) Any(name string) (string, bool) {
	path, ok := idx.any[name]
	return path, ok
}

// Plain returns the plain CSS entry of name
func (idx *Index) Plain(name string) (string, bool) {
	path, ok := idx.plain[name]
	return path, ok
}

// Sass returns the SCSS entry of name
func (idx *Index) Sass(name string) (string, bool) {
	path, ok := idx.sass[name]
	return path, ok
}

// PlainPackage returns the package whose plain CSS entry is path
func (idx *Index) PlainPackage(path string) (string, bool) {
	name, ok := idx.plainFiles[path]
	return name, ok
}

// Lookup returns the full entry for name
func (idx *Index) Lookup(name string) Entry {
	return Entry{
		Name:  name,
		Any:   idx.any[name],
		Plain: idx.plain[name],
		Sass:  idx.sass[name],
	}
}

// Entries returns every indexed package sorted by name
func (idx *Index) Entries() []Entry {
	names := make([]string, 0, len(idx.any))
	for name := range idx.any {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, idx.Lookup(name))
	}
	return entries
}

// Len returns the number of indexed packages
func (idx *Index) Len() int {
	return len(idx.any)
}
