package style

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/logging"
	"github.com/conneroisu/sitepack/internal/resolve"
	"github.com/conneroisu/sitepack/internal/stylemod"
)

// SourcePattern matches the Sass sources the compile hooks claim.
var SourcePattern = regexp.MustCompile(`\.(scss|sass)$`)

// SassHooks claims Sass sources into Namespace and compiles them to CSS.
type SassHooks struct {
	compiler Compiler
	logger   logging.Logger
}

// NewSassHooks creates the compile hooks around compiler
func NewSassHooks(compiler Compiler, logger logging.Logger) *SassHooks {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SassHooks{
		compiler: compiler,
		logger:   logger.WithComponent("sass"),
	}
}

// Resolve claims an existing Sass file by its absolute path. Missing files
// pass so the bundler reports them the usual way.
func (h *SassHooks) Resolve(req resolve.Request) (*resolve.Result, error) {
	p := filepath.FromSlash(req.Path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(req.ResolveDir, p)
	}
	p = filepath.Clean(p)

	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return nil, nil
	}

	return &resolve.Result{
		Path:      p,
		Namespace: Namespace,
	}, nil
}

// Load compiles a claimed Sass file. Compiler diagnostics are returned on
// the result rather than as an error so the bundler can show their
// locations.
func (h *SassHooks) Load(req resolve.LoadRequest) (*resolve.LoadResult, error) {
	ctx := context.Background()
	diags := errors.NewDiagnostics()

	op := logging.StartOperation(h.logger, "sass")
	css, err := h.compiler.Compile(req.Path, diags)
	if err != nil {
		op.EndWithError(ctx, err, "Sass compile failed", "file", req.Path)

		failures := diags.Errors()
		if len(failures) == 0 {
			failures = append(failures, errors.Diagnostic{
				Severity: errors.ErrorSeverityError,
				Message:  err.Error(),
				Location: &errors.Location{Namespace: Namespace, File: req.Path},
			})
		}
		return &resolve.LoadResult{
			Loader:   resolve.LoaderCSS,
			Warnings: diags.Warnings(),
			Errors:   failures,
		}, nil
	}
	op.End(ctx, "Sass compiled", "file", req.Path, "warnings", len(diags.Warnings()))

	return &resolve.LoadResult{
		Contents:   []byte(css),
		Loader:     resolve.LoaderCSS,
		ResolveDir: filepath.Dir(req.Path),
		Warnings:   diags.Warnings(),
		Errors:     diags.Errors(),
	}, nil
}

// PlainImportResolver resolves package specifiers in CSS @import rules,
// from plain stylesheets and from compiled Sass output.
type PlainImportResolver struct {
	index *stylemod.Index
}

// NewPlainImportResolver creates a resolver over index
func NewPlainImportResolver(index *stylemod.Index) *PlainImportResolver {
	return &PlainImportResolver{index: index}
}

// Resolve claims packages with a plain entry, rejects packages that only
// ship Sass or have no style entry, and passes everything else.
func (r *PlainImportResolver) Resolve(req resolve.Request) (*resolve.Result, error) {
	if req.Kind != resolve.KindImportRule {
		return nil, nil
	}
	if !strings.HasSuffix(req.Importer, ".css") && req.Namespace != Namespace {
		return nil, nil
	}

	if entry, ok := r.index.Plain(req.Path); ok {
		return &resolve.Result{Path: entry}, nil
	}
	if _, ok := r.index.Sass(req.Path); ok {
		return nil, errors.NewCrossDialectError(req.Path)
	}
	if _, ok := r.index.Any(req.Path); ok {
		return nil, errors.NewManifestEntryError(req.Path)
	}
	return nil, nil
}
