package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "missing: %s", "/repos/octocat/nope")

	if err.Code != ErrCodeNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotFound)
	}

	if err.Message != "missing: /repos/octocat/nope" {
		t.Errorf("Message = %v, want %v", err.Message, "missing: /repos/octocat/nope")
	}

	expected := "NOT_FOUND: missing: /repos/octocat/nope"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ErrCodeConnection, cause, "request failed")

	if err.Code != ErrCodeConnection {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConnection)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "CONNECTION_ERROR: request failed: dial tcp: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
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
			err:      New(ErrCodeRateLimited, "test"),
			code:     ErrCodeRateLimited,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeRateLimited, "test"),
			code:     ErrCodeAuthentication,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeGeneric, New(ErrCodePayload, "inner"), "outer"),
			code:     ErrCodeGeneric,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeGeneric,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeGeneric,
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
			err:      New(ErrCodeGraphQL, "test"),
			expected: ErrCodeGraphQL,
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

func TestGetStatus(t *testing.T) {
	err := New(ErrCodeNotFound, "gone").WithStatus(404)
	if got := GetStatus(err); got != 404 {
		t.Errorf("GetStatus() = %d, want 404", got)
	}
	if got := GetStatus(errors.New("plain")); got != 0 {
		t.Errorf("GetStatus(plain) = %d, want 0", got)
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
			err:      New(ErrCodeAuthentication, "Bad credentials"),
			expected: "Bad credentials",
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

func TestCodesAreUnique(t *testing.T) {
	seen := make(map[Code]bool)
	for _, c := range Codes {
		if seen[c] {
			t.Errorf("duplicate code %s", c)
		}
		seen[c] = true
	}
	if seen[ErrCodeInvalidInput] {
		t.Error("INVALID_INPUT is not an API-facing code")
	}
}
