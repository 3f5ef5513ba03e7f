// Package style compiles Sass stylesheets and resolves style imports that
// name packages in the dependency directory, in both the plain (CSS) and the
// preprocessed (SCSS/Sass) dialects.
package style

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bep/godartsass/v2"

	"github.com/conneroisu/sitepack/internal/errors"
)

// Namespace is the bundler namespace Sass sources are claimed into.
const Namespace = "sass"

// Compiler turns one Sass file into CSS. Warnings and errors raised while
// compiling are appended to diags; a non-nil error means no CSS was produced.
type Compiler interface {
	Compile(path string, diags *errors.Diagnostics) (string, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(path string, diags *errors.Diagnostics) (string, error)

// Compile implements Compiler
func (f CompilerFunc) Compile(path string, diags *errors.Diagnostics) (string, error) {
	return f(path, diags)
}

// fileURL returns the canonical file:// URL of an absolute path.
func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if !strings.HasPrefix(u.Path, "/") {
		// Windows: file:///C:/x
		u.Path = "/" + u.Path
	}
	return u.String()
}

// filePath is the inverse of fileURL. ok is false for other schemes.
func filePath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	p := u.Path
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), true
}

// syntaxOf picks the source syntax from a file extension.
func syntaxOf(path string) godartsass.SourceSyntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return godartsass.SourceSyntaxSASS
	case ".css":
		return godartsass.SourceSyntaxCSS
	default:
		return godartsass.SourceSyntaxSCSS
	}
}

var partialExtensions = []string{".scss", ".sass", ".css"}

// partialCandidates lists the files a Sass load of path may refer to, in the
// order dart-sass tries them.
func partialCandidates(path string) []string {
	dir, base := filepath.Split(path)
	if ext := filepath.Ext(base); ext != "" {
		return []string{filepath.Join(dir, "_"+base), path}
	}

	candidates := make([]string, 0, len(partialExtensions)*4)
	for _, ext := range partialExtensions {
		candidates = append(candidates,
			filepath.Join(dir, "_"+base+ext),
			path+ext,
		)
	}
	for _, ext := range partialExtensions {
		candidates = append(candidates,
			filepath.Join(path, "_index"+ext),
			filepath.Join(path, "index"+ext),
		)
	}
	return candidates
}

// findPartial returns the first existing candidate for path.
func findPartial(path string) (string, bool) {
	for _, candidate := range partialCandidates(path) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
