package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error types for the outline patch engine
type ErrorType string

const (
	// Host errors
	ErrorTypeHostIncompatible ErrorType = "host_incompatible"
	ErrorTypeCompile          ErrorType = "compile"
	ErrorTypeParse            ErrorType = "parse"

	// Request errors
	ErrorTypeQuery ErrorType = "query"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Sentinel errors for facade requests
var (
	ErrNoProgram    = errors.New("no program")
	ErrNoSourceFile = errors.New("no source file")
)

// HostIncompatibleError reports that the host source does not contain an
// anchor marker the selected profile depends on. Module construction is
// aborted for the lifetime of the process.
type HostIncompatibleError struct {
	Type      ErrorType
	Profile   string
	Marker    string
	Role      string // "start" or "end"
	Closest   string // most similar host line, if any
	Timestamp time.Time
}

// NewHostIncompatibleError creates a new host incompatibility error
func NewHostIncompatibleError(profile, role, marker string) *HostIncompatibleError {
	return &HostIncompatibleError{
		Type:      ErrorTypeHostIncompatible,
		Profile:   profile,
		Marker:    marker,
		Role:      role,
		Timestamp: time.Now(),
	}
}

// WithClosest attaches the closest looking host line as a hint
func (e *HostIncompatibleError) WithClosest(line string) *HostIncompatibleError {
	e.Closest = line
	return e
}

// Error implements the error interface
func (e *HostIncompatibleError) Error() string {
	msg := fmt.Sprintf("host incompatible with %s profile: %s marker %q not found", e.Profile, e.Role, e.Marker)
	if e.Closest != "" {
		msg += fmt.Sprintf(" (closest line: %q)", e.Closest)
	}
	return msg
}

// QueryError represents a failed navigation query
type QueryError struct {
	Type       ErrorType
	FileName   string
	Underlying error
	Timestamp  time.Time
}

// NewQueryError creates a new query error
func NewQueryError(fileName string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeQuery,
		FileName:   fileName,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return fmt.Sprintf("navigation tree for %s failed: %v", e.FileName, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *QueryError) Unwrap() error {
	return e.Underlying
}

// CompileError represents a failure to turn synthesized text into a module
type CompileError struct {
	Type       ErrorType
	Stage      string
	Underlying error
	Timestamp  time.Time
}

// NewCompileError creates a new compile error
func NewCompileError(stage string, err error) *CompileError {
	return &CompileError{
		Type:       ErrorTypeCompile,
		Stage:      stage,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *CompileError) Error() string {
	return fmt.Sprintf("module %s failed: %v", e.Stage, e.Underlying)
}

// Unwrap returns the underlying error
func (e *CompileError) Unwrap() error {
	return e.Underlying
}

// ParseError reports a document the host could not turn into a source file.
// Line and Column are 1-based and zero when the host gives no position.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ParseError) Error() string {
	where := e.FilePath
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.FilePath, e.Line, e.Column)
	}
	if e.Token != "" {
		return fmt.Sprintf("parse error at %s (near token %q): %v", where, e.Token, e.Underlying)
	}
	return fmt.Sprintf("parse error at %s: %v", where, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects independent failures, e.g. every invalid config field.
type MultiError struct {
	Errors []error
}

// NewMultiError drops nil entries from errs.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// ErrorOrNil returns nil when nothing was collected, the single error when
// there is one, and e otherwise.
func (e *MultiError) ErrorOrNil() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	default:
		return e
	}
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// IsHostIncompatible reports whether err is, or wraps, a HostIncompatibleError
func IsHostIncompatible(err error) bool {
	var target *HostIncompatibleError
	return errors.As(err, &target)
}
