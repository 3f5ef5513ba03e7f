package errors

import (
	"fmt"
	"sync"
)

// ErrorSeverity represents the severity of a diagnostic
type ErrorSeverity int

const (
	ErrorSeverityWarning ErrorSeverity = iota
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Location is a source span reported by the style compiler.
type Location struct {
	Namespace string
	File      string
	LineText  string
	Line      int
	Column    int
	Length    int
}

// Diagnostic is one compiler-reported warning or error
type Diagnostic struct {
	Severity ErrorSeverity
	Message  string
	Location *Location
}

// Error implements the error interface
func (d Diagnostic) Error() string {
	if d.Location == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Severity, d.Message)
}

// Diagnostics is an append-only pair of warning and error collections,
// allocated once per compiled file.
type Diagnostics struct {
	warnings []Diagnostic
	errors   []Diagnostic
	mutex    sync.Mutex
}

// NewDiagnostics creates an empty collection pair
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		warnings: make([]Diagnostic, 0),
		errors:   make([]Diagnostic, 0),
	}
}

// Warn appends a warning
func (d *Diagnostics) Warn(message string, location *Location) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.warnings = append(d.warnings, Diagnostic{
		Severity: ErrorSeverityWarning,
		Message:  message,
		Location: location,
	})
}

// Fail appends an error
func (d *Diagnostics) Fail(message string, location *Location) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.errors = append(d.errors, Diagnostic{
		Severity: ErrorSeverityError,
		Message:  message,
		Location: location,
	})
}

// Warnings returns a copy of the collected warnings
func (d *Diagnostics) Warnings() []Diagnostic {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	result := make([]Diagnostic, len(d.warnings))
	copy(result, d.warnings)
	return result
}

// Errors returns a copy of the collected errors
func (d *Diagnostics) Errors() []Diagnostic {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	result := make([]Diagnostic, len(d.errors))
	copy(result, d.errors)
	return result
}

// HasErrors returns true if any error was collected
func (d *Diagnostics) HasErrors() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.errors) > 0
}
