package style

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/logging"
	"github.com/conneroisu/sitepack/internal/stylemod"
)

// DefaultTimeout bounds a single compile.
const DefaultTimeout = 30 * time.Second

// logEventPattern splits a located log event message: "url:line:col: text".
var logEventPattern = regexp.MustCompile(`(?s)^(\S+?):(\d+):(\d+): (.*)$`)

// DartSassOptions configures NewDartSass.
type DartSassOptions struct {
	// Binary is the dart-sass executable; empty means "sass" on PATH
	Binary  string
	Timeout time.Duration
	Minify  bool
	Logger  logging.Logger
}

// DartSass compiles Sass with an embedded dart-sass process. Compiles are
// serialized so log events can be routed to the diagnostics of the file
// being compiled.
type DartSass struct {
	transpiler *godartsass.Transpiler
	importer   *ModuleImporter
	minify     bool
	logger     logging.Logger

	compileMu sync.Mutex
	sinkMu    sync.Mutex
	sink      *compileSink
}

// compileSink is where log events of the running compile go
type compileSink struct {
	diags  *errors.Diagnostics
	path   string
	source string
}

var _ Compiler = (*DartSass)(nil)

// NewDartSass starts the dart-sass process. Close must be called to stop it.
func NewDartSass(index *stylemod.Index, opts DartSassOptions) (*DartSass, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	d := &DartSass{
		importer: NewModuleImporter(index),
		minify:   opts.Minify,
		logger:   opts.Logger.WithComponent("dart-sass"),
	}

	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: opts.Binary,
		Timeout:                  opts.Timeout,
		LogEventHandler:          d.handleLogEvent,
	})
	if err != nil {
		return nil, errors.NewBuildError(errors.ErrCodeCompileFailed, "cannot start dart-sass", err)
	}
	d.transpiler = transpiler

	return d, nil
}

// Compile implements Compiler
func (d *DartSass) Compile(path string, diags *errors.Diagnostics) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeAssetRead, "cannot read stylesheet "+path, err)
	}

	d.compileMu.Lock()
	defer d.compileMu.Unlock()

	d.setSink(&compileSink{diags: diags, path: path, source: string(source)})
	defer d.setSink(nil)

	style := godartsass.OutputStyleExpanded
	if d.minify {
		style = godartsass.OutputStyleCompressed
	}

	result, err := d.transpiler.Execute(godartsass.Args{
		Source:         string(source),
		URL:            fileURL(path),
		SourceSyntax:   syntaxOf(path),
		OutputStyle:    style,
		ImportResolver: d.importer,
		IncludePaths:   []string{filepath.Dir(path)},
	})
	if err != nil {
		var sassErr godartsass.SassError
		if stderrors.As(err, &sassErr) {
			diags.Fail(sassErr.Message, sassErrorLocation(sassErr, path, string(source)))
		}
		return "", errors.NewBuildError(errors.ErrCodeCompileFailed, "cannot compile "+path, err).
			WithLocation(path, 0, 0)
	}

	return result.CSS, nil
}

// Close stops the dart-sass process
func (d *DartSass) Close() error {
	return d.transpiler.Close()
}

func (d *DartSass) setSink(sink *compileSink) {
	d.sinkMu.Lock()
	d.sink = sink
	d.sinkMu.Unlock()
}

// handleLogEvent routes warnings and deprecations to the warning channel
// and @debug output to the error channel.
func (d *DartSass) handleLogEvent(event godartsass.LogEvent) {
	d.sinkMu.Lock()
	sink := d.sink
	d.sinkMu.Unlock()

	if sink == nil {
		d.logger.Debug(context.Background(), "Unrouted Sass log event", "message", event.Message)
		return
	}

	message, location := parseLogEvent(event.Message, sink.path, sink.source)
	switch event.Type {
	case godartsass.LogEventTypeDebug:
		sink.diags.Fail(message, location)
	default:
		sink.diags.Warn(message, location)
	}
}

// parseLogEvent splits a located log message. godartsass reports the span
// start with a 0-based line and column; the location gets a 1-based line and
// the text of that line. Messages without a location are returned unchanged
// with a nil location.
func parseLogEvent(message, path, source string) (string, *errors.Location) {
	m := logEventPattern.FindStringSubmatch(message)
	if m == nil {
		return message, nil
	}

	file := m[1]
	if p, ok := filePath(file); ok {
		file = p
	}
	line, _ := strconv.Atoi(m[2])
	column, _ := strconv.Atoi(m[3])

	location := &errors.Location{
		Namespace: Namespace,
		File:      file,
		Line:      line + 1,
		Column:    column,
	}
	location.LineText = lineNumbered(sourceOf(file, path, source), location.Line)
	return m[4], location
}

// sourceOf returns the text of file: source when file is the compiled path,
// otherwise the file read from disk, or "" when it cannot be read.
func sourceOf(file, path, source string) string {
	if file == path {
		return source
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	return string(content)
}

// lineNumbered returns the text of the 1-based line, or "" past the end.
func lineNumbered(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[line-1], "\r")
}

// sassErrorLocation builds a location from a compile failure span. The line
// is recovered from the span offset when the span's file can be read.
func sassErrorLocation(e godartsass.SassError, path, source string) *errors.Location {
	span := e.Span
	file := path
	if p, ok := filePath(span.Url); ok {
		file = p
	}

	source = sourceOf(file, path, source)

	location := &errors.Location{
		Namespace: Namespace,
		File:      file,
		Column:    span.Start.Column,
		Length:    span.End.Column - span.Start.Column,
	}
	if location.Length < 0 {
		location.Length = 0
	}

	if source != "" && span.Start.Offset >= 0 && span.Start.Offset <= len(source) {
		location.Line, location.LineText = lineAt(source, span.Start.Offset)
	} else {
		location.LineText = firstLine(span.Context)
	}

	return location
}

// lineAt returns the 1-based line number and text of the line containing
// offset.
func lineAt(source string, offset int) (int, string) {
	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	start := strings.LastIndexByte(before, '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		return line, source[start:]
	}
	return line, source[start : offset+end]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// LazyDartSass starts dart-sass on the first compile, so builds without Sass
// sources never need the binary.
type LazyDartSass struct {
	index *stylemod.Index
	opts  DartSassOptions

	once     sync.Once
	compiler *DartSass
	err      error
}

var _ Compiler = (*LazyDartSass)(nil)

// NewLazyDartSass creates a compiler that defers NewDartSass
func NewLazyDartSass(index *stylemod.Index, opts DartSassOptions) *LazyDartSass {
	return &LazyDartSass{index: index, opts: opts}
}

// Compile implements Compiler
func (l *LazyDartSass) Compile(path string, diags *errors.Diagnostics) (string, error) {
	l.once.Do(func() {
		l.compiler, l.err = NewDartSass(l.index, l.opts)
	})
	if l.err != nil {
		return "", l.err
	}
	return l.compiler.Compile(path, diags)
}

// Close stops dart-sass if it was started
func (l *LazyDartSass) Close() error {
	// A compile after Close fails instead of starting a new process.
	l.once.Do(func() {
		l.err = errors.NewBuildError(errors.ErrCodeCompileFailed, "dart-sass closed", nil)
	})
	if l.compiler == nil {
		return nil
	}
	return l.compiler.Close()
}
