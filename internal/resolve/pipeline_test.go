package resolve

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passResolver(calls *[]string, name string) Resolver {
	return ResolverFunc(func(req Request) (*Result, error) {
		*calls = append(*calls, name)
		return nil, nil
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "url-token", KindURLToken.String())
	assert.Equal(t, "import-rule", KindImportRule.String())
	assert.Equal(t, "entry-point", KindEntryPoint.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestFilterMatches(t *testing.T) {
	testCases := []struct {
		name      string
		filter    Filter
		path      string
		namespace string
		expected  bool
	}{
		{"zero filter", Filter{}, "anything", "file", true},
		{"path match", Filter{Path: regexp.MustCompile(`\.scss$`)}, "a/b.scss", "file", true},
		{"path miss", Filter{Path: regexp.MustCompile(`\.scss$`)}, "a/b.css", "file", false},
		{"namespace match", Filter{Namespace: "sass"}, "x.scss", "sass", true},
		{"namespace miss", Filter{Namespace: "sass"}, "x.scss", "file", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.filter.Matches(tc.path, tc.namespace))
		})
	}
}

func TestPipelineResolveOrder(t *testing.T) {
	var calls []string
	p := NewPipeline()
	p.OnResolve("first", Filter{}, passResolver(&calls, "first"))
	p.OnResolve("claimer", Filter{}, ResolverFunc(func(req Request) (*Result, error) {
		calls = append(calls, "claimer")
		return &Result{Path: "/abs/" + req.Path}, nil
	}))
	p.OnResolve("never", Filter{}, passResolver(&calls, "never"))

	res, err := p.Resolve(Request{Path: "x.css"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "/abs/x.css", res.Path)
	assert.Equal(t, []string{"first", "claimer"}, calls)
}

func TestPipelineResolvePassAll(t *testing.T) {
	var calls []string
	p := NewPipeline()
	p.OnResolve("a", Filter{}, passResolver(&calls, "a"))
	p.OnResolve("b", Filter{Path: regexp.MustCompile(`\.js$`)}, passResolver(&calls, "b"))

	res, err := p.Resolve(Request{Path: "style.css"})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"a"}, calls)
}

func TestPipelineRejectStops(t *testing.T) {
	var calls []string
	sentinel := errors.New("rejected")
	p := NewPipeline()
	p.OnResolve("rejecter", Filter{}, ResolverFunc(func(req Request) (*Result, error) {
		return nil, sentinel
	}))
	p.OnResolve("after", Filter{}, passResolver(&calls, "after"))

	res, err := p.Resolve(Request{Path: "x"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "rejecter")
	assert.Empty(t, calls)
}

func TestPipelineLoad(t *testing.T) {
	p := NewPipeline()
	p.OnLoad("sass", Filter{Namespace: "sass"}, LoadFunc(func(req LoadRequest) (*LoadResult, error) {
		return &LoadResult{Contents: []byte("a{}"), Loader: LoaderCSS}, nil
	}))

	res, err := p.Load(LoadRequest{Path: "/x.scss", Namespace: "file"})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = p.Load(LoadRequest{Path: "/x.scss", Namespace: "sass"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, LoaderCSS, res.Loader)

	assert.Equal(t, []string{"load:sass"}, p.Hooks())
}
