package resolve

import (
	"fmt"
	"regexp"
)

// Filter restricts which requests a hook is offered. The zero Filter matches
// everything.
type Filter struct {
	// Path must match the request path when set
	Path *regexp.Regexp
	// Namespace must equal the request namespace when set
	Namespace string
}

// Matches reports whether a path in a namespace passes the filter
func (f Filter) Matches(path, namespace string) bool {
	if f.Namespace != "" && f.Namespace != namespace {
		return false
	}
	if f.Path != nil && !f.Path.MatchString(path) {
		return false
	}
	return true
}

type resolveHook struct {
	name     string
	filter   Filter
	resolver Resolver
}

type loadHook struct {
	name   string
	filter Filter
	loader LoadHook
}

// Pipeline is an ordered list of resolve and load hooks. Hooks are offered a
// request in registration order until one claims or rejects it.
//
// Registration is not safe for concurrent use; dispatch is, as long as the
// hooks themselves are.
type Pipeline struct {
	resolvers []resolveHook
	loaders   []loadHook
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// OnResolve registers a resolve hook
func (p *Pipeline) OnResolve(name string, filter Filter, resolver Resolver) {
	p.resolvers = append(p.resolvers, resolveHook{name: name, filter: filter, resolver: resolver})
}

// OnLoad registers a load hook
func (p *Pipeline) OnLoad(name string, filter Filter, loader LoadHook) {
	p.loaders = append(p.loaders, loadHook{name: name, filter: filter, loader: loader})
}

// Hooks returns the registered hook names, resolve hooks first
func (p *Pipeline) Hooks() []string {
	names := make([]string, 0, len(p.resolvers)+len(p.loaders))
	for _, h := range p.resolvers {
		names = append(names, "resolve:"+h.name)
	}
	for _, h := range p.loaders {
		names = append(names, "load:"+h.name)
	}
	return names
}

// Resolve offers req to each matching resolve hook in order. It returns nil,
// nil when every hook passed.
func (p *Pipeline) Resolve(req Request) (*Result, error) {
	for _, h := range p.resolvers {
		if !h.filter.Matches(req.Path, req.Namespace) {
			continue
		}
		res, err := h.resolver.Resolve(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h.name, err)
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// Load offers req to each matching load hook in order. It returns nil, nil
// when every hook passed.
func (p *Pipeline) Load(req LoadRequest) (*LoadResult, error) {
	for _, h := range p.loaders {
		if !h.filter.Matches(req.Path, req.Namespace) {
			continue
		}
		res, err := h.loader.Load(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h.name, err)
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}
