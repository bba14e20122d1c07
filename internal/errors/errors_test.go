package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"
)

func TestIndexingError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewIndexingError("scan", underlying).
		WithURI("file:///ws/UserMapper.xml").
		WithRecoverable(true)

	if err.Type != ErrorTypeIndexing {
		t.Errorf("Expected Type to be ErrorTypeIndexing, got %v", err.Type)
	}

	if err.URI != "file:///ws/UserMapper.xml" {
		t.Errorf("Expected URI to be set, got %s", err.URI)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	if !err.IsRecoverable() {
		t.Errorf("Expected error to be marked as recoverable")
	}

	expectedMsg := "indexing scan failed for file:///ws/UserMapper.xml: underlying error"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestIndexingErrorWithoutURI(t *testing.T) {
	err := NewIndexingError("enumerate", errors.New("walk failed"))

	expectedMsg := "indexing enumerate failed: walk failed"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestWatchError(t *testing.T) {
	err := NewWatchError("add watch", errors.New("too many open files"))

	if err.Type != ErrorTypeWatch {
		t.Errorf("Expected Type to be ErrorTypeWatch, got %v", err.Type)
	}

	var target *IndexingError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) {
		t.Errorf("Expected errors.As to find the IndexingError")
	}
}

func TestFileError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewFileError("read", "/path/to/file", underlying)

	if err.Type != ErrorTypePermission {
		t.Errorf("Expected Type to be ErrorTypePermission, got %v", err.Type)
	}

	if err.Path != "/path/to/file" {
		t.Errorf("Expected Path to be '/path/to/file', got %s", err.Path)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "file read failed for /path/to/file: permission denied"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestFileErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"fs not exist", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ErrorTypeFileNotFound},
		{"plain not found", errors.New("no such file or directory"), ErrorTypeFileNotFound},
		{"fs permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, ErrorTypePermission},
		{"other", errors.New("i/o timeout"), ErrorTypeRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewFileError("read", "x", tt.err).Type; got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFileTooLargeError(t *testing.T) {
	err := NewFileTooLargeError("/big.xml", 2048, 1024)

	if err.Type != ErrorTypeFileTooLarge {
		t.Errorf("Expected Type to be ErrorTypeFileTooLarge, got %v", err.Type)
	}

	expectedMsg := "file read failed for /big.xml: size 2048 exceeds limit 1024"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("field_name", "invalid_value", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `config error for field field_name (value invalid_value): invalid value`
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

	errMsg := multiErr.Error()
	if len(errMsg) < 10 || errMsg[:10] != "3 errors: " {
		t.Errorf("Expected message to start with '3 errors: ', got %q", errMsg)
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}
	if emptyErr.ErrorOrNil() != nil {
		t.Errorf("Expected ErrorOrNil to be nil for no errors")
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}

	if !errors.Is(multiErr, err2) {
		t.Errorf("Expected errors.Is to search every wrapped error")
	}
}

func TestSentinels(t *testing.T) {
	wrapped := fmt.Errorf("ensure initialized: %w", ErrIndexDisposed)
	if !errors.Is(wrapped, ErrIndexDisposed) {
		t.Errorf("Expected wrapped sentinel to match")
	}
	if errors.Is(wrapped, ErrNotReady) {
		t.Errorf("Sentinels must be distinct")
	}
}

func TestTimestamp(t *testing.T) {
	err := NewIndexingError("test", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}

func BenchmarkIndexingError(b *testing.B) {
	underlying := errors.New("underlying error")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err := NewIndexingError("scan", underlying).
			WithURI("file:///ws/UserMapper.xml").
			WithRecoverable(true)
		_ = err.Error()
	}
}
