package zerrors

import (
	"errors"
	"testing"
)

func TestNewAndError(t *testing.T) {
	tests := []struct {
		name    string
		code    Code
		message string
	}{
		{"validation error", CodeValidationError, "title must not be empty"},
		{"credential not found", CodeCredentialNotFound, "credential c1 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.Code != tt.code {
				t.Errorf("expected code %v, got %v", tt.code, err.Code)
			}
			if err.Error() == "" {
				t.Error("expected non-empty error string")
			}
		})
	}
}

func TestWrapPreservesCause(t *testing.T) {
	base := errors.New("disk full")
	wrapped := Wrap(base, CodeFileError, "failed to write archive")

	if wrapped.Unwrap() != base {
		t.Fatal("expected Unwrap to return the original cause")
	}
	if !errors.Is(wrapped, wrapped) {
		t.Fatal("expected errors.Is to match itself")
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Fatal("expected Wrap(nil, ...) to return nil")
	}
}

func TestIsMatchesByCodeOnly(t *testing.T) {
	a := New(CodeInvalidPassword, "wrong password")
	b := New(CodeInvalidPassword, "a different message")

	if !errors.Is(a, b) {
		t.Fatal("expected errors with the same code to match via errors.Is")
	}

	c := New(CodeCorruptedArchive, "bad header")
	if errors.Is(a, c) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != Success {
		t.Errorf("expected Success for nil error")
	}
	if GetCode(errors.New("plain")) != CodeInternalError {
		t.Errorf("expected CodeInternalError for a non-ZipLockError")
	}
	if GetCode(New(CodeFileNotFound, "missing")) != CodeFileNotFound {
		t.Errorf("expected CodeFileNotFound to round-trip")
	}
}
