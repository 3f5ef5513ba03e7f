// Package resolve defines the resolve/load hook protocol shared by every
// resolver in sitepack and the ordered pipeline that dispatches requests to
// them.
//
// A hook may pass (return a nil result and nil error, deferring to the next
// hook), claim (return a result), or reject (return an error). The pipeline
// is independent of the bundler; internal/build adapts it into an esbuild
// plugin.
package resolve

import (
	"github.com/conneroisu/sitepack/internal/errors"
)

// Kind identifies what kind of reference produced a request.
type Kind int

const (
	KindEntryPoint Kind = iota
	KindImportStatement
	KindRequireCall
	KindDynamicImport
	KindRequireResolve
	KindImportRule
	KindComposesFrom
	KindURLToken
)

// String returns the bundler-facing name of the kind
func (k Kind) String() string {
	switch k {
	case KindEntryPoint:
		return "entry-point"
	case KindImportStatement:
		return "import-statement"
	case KindRequireCall:
		return "require-call"
	case KindDynamicImport:
		return "dynamic-import"
	case KindRequireResolve:
		return "require-resolve"
	case KindImportRule:
		return "import-rule"
	case KindComposesFrom:
		return "composes-from"
	case KindURLToken:
		return "url-token"
	default:
		return "unknown"
	}
}

// Loader is the bundler loader kind a load hook assigns to claimed contents.
type Loader string

const (
	LoaderDefault Loader = ""
	LoaderFile    Loader = "file"
	LoaderText    Loader = "text"
	LoaderCSS     Loader = "css"
	LoaderJS      Loader = "js"
	LoaderBinary  Loader = "binary"
)

// Request is the input of a resolve hook.
type Request struct {
	Path       string
	Kind       Kind
	Importer   string
	ResolveDir string
	Namespace  string
	PluginData interface{}
}

// Result is a claimed resolution.
type Result struct {
	Path       string
	Namespace  string
	PluginData interface{}
	Warnings   []errors.Diagnostic
}

// LoadRequest is the input of a load hook: a claimed path plus its tags.
type LoadRequest struct {
	Path       string
	Namespace  string
	PluginData interface{}
}

// LoadResult is claimed content.
type LoadResult struct {
	Contents   []byte
	Loader     Loader
	ResolveDir string
	Warnings   []errors.Diagnostic
	Errors     []errors.Diagnostic
}

// Resolver is a resolve hook. A nil result with a nil error means pass.
type Resolver interface {
	Resolve(req Request) (*Result, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(req Request) (*Result, error)

// Resolve implements Resolver
func (f ResolverFunc) Resolve(req Request) (*Result, error) {
	return f(req)
}

// LoadHook is a load hook. A nil result with a nil error means pass.
type LoadHook interface {
	Load(req LoadRequest) (*LoadResult, error)
}

// LoadFunc adapts a function to LoadHook.
type LoadFunc func(req LoadRequest) (*LoadResult, error)

// Load implements LoadHook
func (f LoadFunc) Load(req LoadRequest) (*LoadResult, error) {
	return f(req)
}
