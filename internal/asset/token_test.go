package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsoluteURL(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{"https://fonts.example.com/inter.woff2", true},
		{"http://example.com/a.png", true},
		{"data:image/png;base64,AAAA", true},
		{"//cdn.example.com/logo.svg", true},
		{"fonts/inter.woff2", false},
		{"../img/logo.png", false},
		{"/img/logo.png", false},
		{"#section", false},
		{"c:/images/logo.png", false},
		{"%zz", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsAbsoluteURL(tc.path))
		})
	}
}

func TestResolvePasses(t *testing.T) {
	r := NewTokenResolver()

	testCases := []struct {
		name string
		req  resolve.Request
	}{
		{"absolute url token", resolve.Request{Path: "https://x.test/a.woff", Kind: resolve.KindURLToken}},
		{"absolute url import", resolve.Request{Path: "https://x.test/a.css", Kind: resolve.KindImportRule}},
		{"fragment", resolve.Request{Path: "#clip", Kind: resolve.KindURLToken, ResolveDir: "/src"}},
		{"script import", resolve.Request{Path: "./util.js", Kind: resolve.KindImportStatement, ResolveDir: "/src"}},
		{"css import rule", resolve.Request{Path: "./base.css", Kind: resolve.KindImportRule, ResolveDir: "/src"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Resolve(tc.req)
			require.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestResolveClaimsLocalToken(t *testing.T) {
	r := NewTokenResolver()
	dir := filepath.Join(string(filepath.Separator), "site", "css")

	res, err := r.Resolve(resolve.Request{
		Path:       "../fonts/inter.woff2",
		Kind:       resolve.KindURLToken,
		ResolveDir: dir,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, filepath.Join(string(filepath.Separator), "site", "fonts", "inter.woff2"), res.Path)
	assert.Equal(t, URLTokenData, res.PluginData)
	assert.Empty(t, res.Namespace)
}

func TestResolveTokenPaths(t *testing.T) {
	r := NewTokenResolver()
	dir := filepath.Join(string(filepath.Separator), "site", "css")

	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{"query and fragment", "fonts/x.eot?#iefix", filepath.Join(dir, "fonts", "x.eot")},
		{"version query", "fonts/x.woff?v=2", filepath.Join(dir, "fonts", "x.woff")},
		{"svg fragment", "icons.svg#star", filepath.Join(dir, "icons.svg")},
		{"root relative", "/img/x.png", filepath.Join(dir, "img", "x.png")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Resolve(resolve.Request{Path: tc.path, Kind: resolve.KindURLToken, ResolveDir: dir})
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tc.expected, res.Path)
		})
	}

	t.Run("query only passes", func(t *testing.T) {
		res, err := r.Resolve(resolve.Request{Path: "?v=2", Kind: resolve.KindURLToken, ResolveDir: dir})
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "inter.woff2")
	require.NoError(t, os.WriteFile(font, []byte{0x77, 0x4f, 0x46, 0x32}, 0o644))

	r := NewTokenResolver()

	t.Run("claimed token loads raw bytes", func(t *testing.T) {
		res, err := r.Load(resolve.LoadRequest{Path: font, PluginData: URLTokenData})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, []byte{0x77, 0x4f, 0x46, 0x32}, res.Contents)
		assert.Equal(t, resolve.LoaderFile, res.Loader)
	})

	t.Run("untagged request passes", func(t *testing.T) {
		res, err := r.Load(resolve.LoadRequest{Path: font})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("absolute url passes even when tagged", func(t *testing.T) {
		res, err := r.Load(resolve.LoadRequest{Path: "https://x.test/a.woff", PluginData: URLTokenData})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("missing file rejects", func(t *testing.T) {
		res, err := r.Load(resolve.LoadRequest{Path: filepath.Join(dir, "gone.png"), PluginData: URLTokenData})
		assert.Nil(t, res)
		require.Error(t, err)
		var se *errors.SitepackError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, errors.ErrCodeAssetRead, se.Code)
	})
}

func TestResolveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "bg.png"), []byte("png"), 0o644))

	r := NewTokenResolver()
	for _, token := range []string{"img/bg.png", "img/bg.png?v=3", "img/bg.png?#iefix", "/img/bg.png"} {
		t.Run(token, func(t *testing.T) {
			res, err := r.Resolve(resolve.Request{Path: token, Kind: resolve.KindURLToken, ResolveDir: dir})
			require.NoError(t, err)
			require.NotNil(t, res)

			loaded, err := r.Load(resolve.LoadRequest{Path: res.Path, PluginData: res.PluginData})
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, "png", string(loaded.Contents))
		})
	}
}
