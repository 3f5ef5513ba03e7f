// Package asset classifies url()-style reference tokens as external network
// locations or local files, and loads the local ones as opaque files so the
// bundler copies them into the output under a hashed name.
package asset

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/resolve"
)

// URLTokenData tags requests claimed by TokenResolver.
const URLTokenData = "url-token"

// IsAbsoluteURL reports whether p parses as an absolute network location
// such as https://cdn.example.com/font.woff2 or data:image/png;base64,...
func IsAbsoluteURL(p string) bool {
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	if !u.IsAbs() {
		// Protocol-relative: //cdn.example.com/x.png
		return strings.HasPrefix(p, "//") && u.Host != ""
	}
	// A drive-letter Windows path parses as scheme "c".
	return len(u.Scheme) > 1
}

// TokenResolver resolves and loads local url-token references. It holds no
// state; both stages only read the filesystem.
type TokenResolver struct{}

// NewTokenResolver creates a TokenResolver
func NewTokenResolver() *TokenResolver {
	return &TokenResolver{}
}

// Resolve claims local url-token references, resolved against the request's
// directory with any query or fragment suffix dropped. Absolute URLs, other
// request kinds and same-document fragments pass.
func (r *TokenResolver) Resolve(req resolve.Request) (*resolve.Result, error) {
	if IsAbsoluteURL(req.Path) {
		return nil, nil
	}
	if req.Kind != resolve.KindURLToken {
		return nil, nil
	}
	if strings.HasPrefix(req.Path, "#") {
		return nil, nil
	}

	// x.eot?#iefix and x.woff?v=2 name the files x.eot and x.woff.
	p, _, _ := strings.Cut(req.Path, "?")
	p, _, _ = strings.Cut(p, "#")
	if p == "" {
		return nil, nil
	}

	// Root-relative tokens are relative to the request directory too.
	return &resolve.Result{
		Path:       filepath.Join(req.ResolveDir, filepath.FromSlash(p)),
		PluginData: URLTokenData,
	}, nil
}

// Load returns the raw bytes of a claimed url-token file for opaque file
// loading. Anything else passes.
func (r *TokenResolver) Load(req resolve.LoadRequest) (*resolve.LoadResult, error) {
	if IsAbsoluteURL(req.Path) {
		return nil, nil
	}
	if data, _ := req.PluginData.(string); data != URLTokenData {
		return nil, nil
	}

	contents, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeAssetRead, "cannot read asset "+req.Path, err)
	}

	return &resolve.LoadResult{
		Contents: contents,
		Loader:   resolve.LoaderFile,
	}, nil
}
