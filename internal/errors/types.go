package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeBuild    ErrorType = "build"
	ErrorTypeResolve  ErrorType = "resolve"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeManifestEntry  = "ERR_MANIFEST_ENTRY"
	ErrCodeCrossDialect   = "ERR_CROSS_DIALECT"
	ErrCodeAssetRead      = "ERR_ASSET_READ"
	ErrCodeCompileFailed  = "ERR_COMPILE_FAILED"
	ErrCodeBuildFailed    = "ERR_BUILD_FAILED"
	ErrCodeMirrorFailed   = "ERR_MIRROR_FAILED"
	ErrCodeServeFailed    = "ERR_SERVE_FAILED"
	ErrCodeInvalidAddress = "ERR_INVALID_ADDRESS"
)

// Sentinels for errors.Is comparisons. Only Type and Code take part in the match.
var (
	ErrManifestEntry = &SitepackError{Type: ErrorTypeResolve, Code: ErrCodeManifestEntry}
	ErrCrossDialect  = &SitepackError{Type: ErrorTypeResolve, Code: ErrCodeCrossDialect}
)

// SitepackError is a structured error type with context.
type SitepackError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Specifier string
	FilePath  string
	Line      int
	Column    int
}

// Error implements the error interface.
func (e *SitepackError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SitepackError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SitepackError) Is(target error) bool {
	var t *SitepackError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLocation adds file location information.
func (e *SitepackError) WithLocation(filePath string, line, column int) *SitepackError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SitepackError {
	return &SitepackError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SitepackError {
	return &SitepackError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *SitepackError {
	return &SitepackError{
		Type:    ErrorTypeBuild,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewManifestEntryError reports a dependency package whose manifest names no
// usable style entry.
func NewManifestEntryError(specifier string) *SitepackError {
	return &SitepackError{
		Type:      ErrorTypeResolve,
		Code:      ErrCodeManifestEntry,
		Specifier: specifier,
		Message: fmt.Sprintf(
			"%q module has no s/css entries. Needs \"main\", \"style\" or \"sass\" in its package.json",
			specifier,
		),
	}
}

// NewCrossDialectError reports a plain stylesheet importing a package that
// only ships preprocessed sources.
func NewCrossDialectError(specifier string) *SitepackError {
	return &SitepackError{
		Type:      ErrorTypeResolve,
		Code:      ErrCodeCrossDialect,
		Specifier: specifier,
		Message: fmt.Sprintf(
			"%q cannot import scss into css. Needs \"main\" or \"style\" css file in its package.json",
			specifier,
		),
	}
}

// IsResolveError reports whether err or any error it wraps is a terminal
// resolution failure, such as a build failure caused by one.
func IsResolveError(err error) bool {
	return hasType(err, ErrorTypeResolve)
}

// IsConfigError reports whether err or any error it wraps is
// configuration-related.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// hasType checks every SitepackError in the chain, not just the outermost.
func hasType(err error, t ErrorType) bool {
	for err != nil {
		var se *SitepackError
		if !errors.As(err, &se) {
			return false
		}
		if se.Type == t {
			return true
		}
		err = se.Cause
	}
	return false
}
