package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/bep/godartsass/v2"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/stylemod"
)

// ModuleImporter resolves bare package specifiers inside Sass sources
// against the style module index.
//
// Preprocessed entries are inlined and compiled with the importing file.
// Plain entries are left to the bundler: loading one yields a CSS
// @import of the package name, which the plain import hook claims.
type ModuleImporter struct {
	index *stylemod.Index
}

var _ godartsass.ImportResolver = (*ModuleImporter)(nil)

// NewModuleImporter creates an importer over index
func NewModuleImporter(index *stylemod.Index) *ModuleImporter {
	return &ModuleImporter{index: index}
}

// CanonicalizeURL implements godartsass.ImportResolver. An empty result
// defers to dart-sass's own relative and load-path resolution.
func (m *ModuleImporter) CanonicalizeURL(u string) (string, error) {
	if strings.HasPrefix(u, "file:") {
		p, ok := filePath(u)
		if !ok {
			return "", nil
		}
		if found, ok := findPartial(p); ok {
			return fileURL(found), nil
		}
		return "", nil
	}

	if entry, ok := m.index.Sass(u); ok {
		return fileURL(entry), nil
	}
	if entry, ok := m.index.Plain(u); ok {
		return fileURL(entry), nil
	}
	if _, ok := m.index.Any(u); ok {
		return "", errors.NewManifestEntryError(u)
	}
	return "", nil
}

// Load implements godartsass.ImportResolver
func (m *ModuleImporter) Load(canonicalizedURL string) (godartsass.Import, error) {
	p, ok := filePath(canonicalizedURL)
	if !ok {
		return godartsass.Import{}, fmt.Errorf("unsupported import url %q", canonicalizedURL)
	}

	if name, ok := m.index.PlainPackage(p); ok {
		return godartsass.Import{
			Content:      fmt.Sprintf("@import %q;", name),
			SourceSyntax: godartsass.SourceSyntaxCSS,
		}, nil
	}

	content, err := os.ReadFile(p)
	if err != nil {
		return godartsass.Import{}, errors.NewIOError(errors.ErrCodeAssetRead, "cannot read stylesheet "+p, err)
	}

	return godartsass.Import{
		Content:      string(content),
		SourceSyntax: syntaxOf(p),
	}, nil
}
