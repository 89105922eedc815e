package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestHostIncompatibleError(t *testing.T) {
	err := NewHostIncompatibleError("refactored", "start", "// src/services/navigationBar.ts")

	if err.Type != ErrorTypeHostIncompatible {
		t.Errorf("Expected Type to be ErrorTypeHostIncompatible, got %v", err.Type)
	}

	expectedMsg := `host incompatible with refactored profile: start marker "// src/services/navigationBar.ts" not found`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	err.WithClosest("// src/services/navigateTo.ts")
	if !strings.Contains(err.Error(), `closest line: "// src/services/navigateTo.ts"`) {
		t.Errorf("Expected closest line hint in %q", err.Error())
	}

	wrapped := fmt.Errorf("build module: %w", err)
	if !IsHostIncompatible(wrapped) {
		t.Errorf("Expected wrapped error to be detected as host incompatible")
	}
	if IsHostIncompatible(errors.New("other")) {
		t.Errorf("Expected plain error not to be host incompatible")
	}
}

func TestQueryError(t *testing.T) {
	err := NewQueryError("/src/app.tsx", ErrNoSourceFile)

	if err.Type != ErrorTypeQuery {
		t.Errorf("Expected Type to be ErrorTypeQuery, got %v", err.Type)
	}

	if !errors.Is(err, ErrNoSourceFile) {
		t.Errorf("Expected error to unwrap to ErrNoSourceFile")
	}

	expectedMsg := "navigation tree for /src/app.tsx failed: no source file"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestCompileError(t *testing.T) {
	underlying := errors.New("SyntaxError: Unexpected token")
	err := NewCompileError("evaluate", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "module evaluate failed: SyntaxError: Unexpected token"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseError(t *testing.T) {
	underlying := errors.New("syntax error")
	err := NewParseError("navigationBar.js", 10, 5, "identifier", underlying)

	if err.Type != ErrorTypeParse {
		t.Errorf("Expected Type to be ErrorTypeParse, got %v", err.Type)
	}

	if err.Line != 10 || err.Column != 5 {
		t.Errorf("Expected Line/Column to be 10:5, got %d:%d", err.Line, err.Column)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `parse error at navigationBar.js:10:5 (near token "identifier"): syntax error`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseErrorWithoutPosition(t *testing.T) {
	err := NewParseError("src/app.tsx", 0, 0, "", errors.New("Unexpected token"))

	expectedMsg := "parse error at src/app.tsx: Unexpected token"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestFileError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewFileError("read", "/path/to/typescript.js", underlying)

	if err.Type != ErrorTypePermission {
		t.Errorf("Expected Type to be ErrorTypePermission, got %v", err.Type)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "file read failed for /path/to/typescript.js: permission denied"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestFileErrorWithNotFound(t *testing.T) {
	underlying := errors.New("no such file or directory")
	err := NewFileError("stat", "/missing/file", underlying)

	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected Type to be ErrorTypeFileNotFound, got %v", err.Type)
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("host.profile", "modern", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `config error for field host.profile (value modern): invalid value`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})
	if len(multiErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(multiErr.Errors))
	}
	if !strings.HasPrefix(multiErr.Error(), "3 errors: ") {
		t.Errorf("Expected message to start with '3 errors: ', got %q", multiErr.Error())
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}

	if !errors.Is(multiErr, err2) {
		t.Errorf("Expected multi error to match a member error")
	}
	if multiErr.Error() != "3 errors: error 1; error 2; error 3" {
		t.Errorf("Unexpected message %q", multiErr.Error())
	}
}

func TestMultiErrorOrNil(t *testing.T) {
	if err := NewMultiError(nil).ErrorOrNil(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}

	only := NewConfigError("output.format", "yaml", errors.New("bad"))
	if err := NewMultiError([]error{nil, only}).ErrorOrNil(); err != only {
		t.Errorf("Expected the single error back, got %v", err)
	}

	err := NewMultiError([]error{only, errors.New("other")}).ErrorOrNil()
	var multi *MultiError
	if !errors.As(err, &multi) || len(multi.Errors) != 2 {
		t.Errorf("Expected a MultiError with 2 entries, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "output.format" {
		t.Errorf("Expected errors.As to reach the ConfigError, got %v", err)
	}
}

func TestTimestamp(t *testing.T) {
	err := NewCompileError("test", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}
