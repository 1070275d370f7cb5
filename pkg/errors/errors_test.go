package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoSuchFamily, "can't find family %q", "F9")

	if err.Code != ErrCodeNoSuchFamily {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoSuchFamily)
	}

	if err.Message != `can't find family "F9"` {
		t.Errorf("Message = %v, want %v", err.Message, `can't find family "F9"`)
	}

	expected := `NO_SUCH_FAMILY: can't find family "F9"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeFileNotFound, cause, "open input.ged")

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileNotFound)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidConfig, "test"),
			code:     ErrCodeInvalidConfig,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidConfig, "test"),
			code:     ErrCodeNoSuchFamily,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("load: %w", New(ErrCodeNoSuchFamily, "inner")),
			code:     ErrCodeNoSuchFamily,
			expected: true,
		},
		{
			name:     "parse error",
			err:      fmt.Errorf("load: %w", &ParseError{Line: 3, Text: "1 SEX"}),
			code:     ErrCodeInvalidGEDCOM,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidConfig,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidConfig,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidEncoding, "test"),
			expected: ErrCodeInvalidEncoding,
		},
		{
			name:     "parse error",
			err:      &ParseError{Line: 1, Text: "x"},
			expected: ErrCodeInvalidGEDCOM,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidConfig, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("SEX: missing value")
	err := &ParseError{Line: 12, Text: "1 SEX", Cause: cause}

	want := "encountered parsing error in .ged: SEX: missing value\nline (12): 1 SEX"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to its cause")
	}
	if err.Code() != ErrCodeInvalidGEDCOM {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeInvalidGEDCOM)
	}
	if !strings.Contains(UserMessage(err), "line (12)") {
		t.Errorf("UserMessage() should keep the line number: %q", UserMessage(err))
	}
}

func TestInvariant(t *testing.T) {
	err := Invariant("spouse of %s not placed", "F3")

	if !errors.Is(err, ErrInvariant) {
		t.Error("Invariant() should wrap ErrInvariant")
	}
	if !Is(err, ErrCodeInternal) {
		t.Errorf("Invariant() code = %v, want %v", err.Code, ErrCodeInternal)
	}
}
