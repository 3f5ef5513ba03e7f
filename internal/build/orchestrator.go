// Package build drives esbuild for a static site: it discovers entry points,
// mirrors static files into the output tree, and runs one-shot builds or a
// development server with sitepack's resolve/load hooks installed.
package build

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/sitepack/internal/asset"
	"github.com/conneroisu/sitepack/internal/config"
	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/logging"
	"github.com/conneroisu/sitepack/internal/resolve"
	"github.com/conneroisu/sitepack/internal/scanner"
	"github.com/conneroisu/sitepack/internal/style"
	"github.com/conneroisu/sitepack/internal/stylemod"
)

// Hook names, in pipeline order.
const (
	HookURLToken    = "url-token"
	HookSass        = "sass"
	HookPlainImport = "plain-import"
)

// Orchestrator owns the style module index and the hook pipeline for one
// configuration. Both are built once, in New, and shared by every build.
type Orchestrator struct {
	config   *config.Config
	logger   logging.Logger
	index    *stylemod.Index
	compiler style.Compiler
	pipeline *resolve.Pipeline
	scanner  *scanner.EntryScanner
	metrics  *Metrics
}

// New builds the style module index and assembles the pipeline. A nil
// compiler means dart-sass, started on the first Sass compile.
func New(cfg *config.Config, logger logging.Logger, compiler style.Compiler) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("build")

	if _, ok := targetOf(cfg.Build.Target); !ok {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown target %q", cfg.Build.Target))
	}
	hostPattern, err := regexp.Compile(cfg.Entries.HostPattern)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid host pattern: "+err.Error())
	}

	index, err := stylemod.Build(cfg.Style.ModulesDir,
		stylemod.WithManifest(cfg.Style.Manifest),
		stylemod.WithFields(cfg.Style.Fields),
		stylemod.WithLogger(logger.WithComponent("stylemod")),
	)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeConfigInvalid, "cannot index "+cfg.Style.ModulesDir, err)
	}

	if compiler == nil {
		compiler = style.NewLazyDartSass(index, style.DartSassOptions{
			Binary:  cfg.Style.DartSass,
			Timeout: cfg.Style.Timeout,
			Minify:  cfg.Build.Minify,
			Logger:  logger,
		})
	}

	o := &Orchestrator{
		config:   cfg,
		logger:   logger,
		index:    index,
		compiler: compiler,
		metrics:  NewMetrics(),
		scanner: scanner.NewEntryScanner(cfg.AliasTable(),
			scanner.WithHostFilter(scanner.MatchPattern(hostPattern)),
			scanner.WithLogger(logger.WithComponent("scanner")),
		),
	}
	o.pipeline = o.assemble()

	logger.Debug(context.Background(), "Orchestrator ready",
		"modules", index.Len(),
		"hooks", o.pipeline.Hooks(),
	)

	return o, nil
}

// assemble registers the hooks. Order matters: url tokens are claimed before
// anything else sees them, and Sass sources before plain imports.
func (o *Orchestrator) assemble() *resolve.Pipeline {
	pipeline := resolve.NewPipeline()

	tokens := asset.NewTokenResolver()
	sass := style.NewSassHooks(o.compiler, o.logger)
	plain := style.NewPlainImportResolver(o.index)

	pipeline.OnResolve(HookURLToken, resolve.Filter{}, tokens)
	pipeline.OnResolve(HookSass, resolve.Filter{Path: style.SourcePattern}, sass)
	pipeline.OnResolve(HookPlainImport, resolve.Filter{}, plain)

	pipeline.OnLoad(HookURLToken, resolve.Filter{}, tokens)
	pipeline.OnLoad(HookSass, resolve.Filter{Namespace: style.Namespace}, sass)

	return pipeline
}

// Index returns the style module index
func (o *Orchestrator) Index() *stylemod.Index {
	return o.index
}

// Pipeline returns the assembled hook pipeline
func (o *Orchestrator) Pipeline() *resolve.Pipeline {
	return o.pipeline
}

// Metrics returns the build metrics
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Entries discovers the entry points referenced from the source tree
func (o *Orchestrator) Entries(ctx context.Context) ([]scanner.Entry, error) {
	return o.scanner.Discover(ctx, o.config.Source)
}

// BuildOptions discovers entry points and returns the esbuild options for a
// build writing to the output directory.
func (o *Orchestrator) BuildOptions(ctx context.Context) (api.BuildOptions, error) {
	entries, err := o.Entries(ctx)
	if err != nil {
		return api.BuildOptions{}, err
	}

	target, _ := targetOf(o.config.Build.Target)
	sourcemap := api.SourceMapNone
	if o.config.Build.Sourcemap {
		sourcemap = api.SourceMapLinked
	}
	minify := o.config.Build.Minify

	return api.BuildOptions{
		EntryPoints:       entryPoints(entries),
		Outbase:           o.config.Source,
		Outdir:            o.config.Output,
		Plugins:           []api.Plugin{NewPlugin(o.pipeline)},
		Loader:            StaticLoaders(),
		Target:            target,
		Bundle:            o.config.Build.Bundle,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		Sourcemap:         sourcemap,
		AssetNames:        o.config.Build.AssetNames,
		LogLevel:          api.LogLevelSilent,
		Write:             true,
	}, nil
}

// entryPoints returns the discovered paths. A path referenced from several
// hosts is passed to esbuild once.
func entryPoints(entries []scanner.Entry) []string {
	seen := make(map[string]bool, len(entries))
	paths := make([]string, 0, len(entries))
	for _, p := range scanner.Paths(entries) {
		if seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

// Build mirrors the source tree into the output directory and runs esbuild
// over the discovered entry points.
func (o *Orchestrator) Build(ctx context.Context) (Result, error) {
	op := logging.StartOperation(o.logger, "build")
	result, err := o.build(ctx)
	result.Duration = op.Elapsed()
	result.Error = err
	o.metrics.Record(result)

	if err != nil {
		o.logger.Error(ctx, err, "Build failed", "duration_ms", result.Duration.Milliseconds())
		return result, err
	}
	o.logger.Info(ctx, "Build complete",
		"output", o.config.Output,
		"entries", result.Entries,
		"warnings", result.Warnings,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (o *Orchestrator) build(ctx context.Context) (Result, error) {
	opts, err := o.BuildOptions(ctx)
	if err != nil {
		return Result{}, err
	}
	result := Result{Entries: len(opts.EntryPoints)}
	if result.Entries == 0 {
		o.logger.Warn(ctx, nil, "No entry points discovered", "source", o.config.Source)
	}

	if err := Mirror(o.config.Source, o.config.Output, o.config.CopyExtensions, o.config.Protect); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	built := api.Build(opts)
	result.Warnings = len(built.Warnings)
	result.Errors = len(built.Errors)
	o.report(ctx, built.Warnings, built.Errors)

	if len(built.Errors) > 0 {
		return result, buildFailure(built.Errors)
	}
	return result, nil
}

// report logs esbuild messages through the structured logger
func (o *Orchestrator) report(ctx context.Context, warnings, failures []api.Message) {
	for _, msg := range warnings {
		o.logger.Warn(ctx, nil, msg.Text, locationFields(msg)...)
	}
	for _, msg := range failures {
		o.logger.Error(ctx, nil, msg.Text, locationFields(msg)...)
	}
}

func locationFields(msg api.Message) []interface{} {
	fields := []interface{}{}
	if msg.PluginName != "" {
		fields = append(fields, "plugin", msg.PluginName)
	}
	if msg.Location != nil {
		fields = append(fields,
			"file", msg.Location.File,
			"line", msg.Location.Line,
			"column", msg.Location.Column,
		)
	}
	return fields
}

func buildFailure(messages []api.Message) error {
	if len(messages) == 0 {
		return errors.NewBuildError(errors.ErrCodeBuildFailed, "build failed", nil)
	}
	first := messages[0]
	// Hook errors travel in Detail; keep them in the chain for errors.Is.
	var err *errors.SitepackError
	if cause, ok := first.Detail.(error); ok {
		err = errors.NewBuildError(errors.ErrCodeBuildFailed,
			fmt.Sprintf("build failed with %d error(s)", len(messages)), cause)
	} else {
		err = errors.NewBuildError(errors.ErrCodeBuildFailed,
			fmt.Sprintf("build failed with %d error(s): %s", len(messages), first.Text), nil)
	}
	if first.Location != nil {
		err = err.WithLocation(first.Location.File, first.Location.Line, first.Location.Column)
	}
	return err
}

// Serve runs the esbuild development server on addr until ctx is done.
// Built files are served from memory, overlaying the source directory.
// ready, when set, is called with the bound address.
func (o *Orchestrator) Serve(ctx context.Context, addr string, ready func(host string, port uint16)) error {
	host, port, err := ParseServeAddress(addr)
	if err != nil {
		return err
	}

	opts, err := o.BuildOptions(ctx)
	if err != nil {
		return err
	}
	opts.Outdir = o.config.Source
	opts.Write = false

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return buildFailure(ctxErr.Errors)
	}
	defer buildCtx.Dispose()

	served, err := buildCtx.Serve(api.ServeOptions{
		Host:     host,
		Port:     port,
		Servedir: o.config.Source,
	})
	if err != nil {
		return errors.NewBuildError(errors.ErrCodeServeFailed, "cannot serve on "+addr, err)
	}

	o.logger.Info(ctx, "Serving",
		"url", fmt.Sprintf("http://%s:%d/", served.Host, served.Port),
		"entries", len(opts.EntryPoints),
	)
	if ready != nil {
		ready(served.Host, served.Port)
	}

	<-ctx.Done()
	o.logger.Info(ctx, "Server stopped")
	return nil
}

// Close releases the style compiler when it holds resources
func (o *Orchestrator) Close() error {
	if closer, ok := o.compiler.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
