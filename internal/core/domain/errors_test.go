package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("GB-TEST-1000", "test message"),
			expected: "[GB-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("GB-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[GB-TEST-1001] test message: extra info",
		},
		{
			name:     "error with interval and path",
			err:      NewDomainError("GB-TEST-1002", "test message").WithInterval("daily").WithPath("/b/daily"),
			expected: "[GB-TEST-1002] test message (interval daily) [path /b/daily]",
		},
		{
			name:     "error with formatted details",
			err:      NewDomainError("GB-TEST-1003", "test message").WithDetails("keep=%d", 3),
			expected: "[GB-TEST-1003] test message: keep=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_ErrorIncludesCause(t *testing.T) {
	err := ErrPopulationFailure.WithCause(errors.New("rsync exited 23"))
	if !strings.Contains(err.Error(), "rsync exited 23") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("GB-TEST-1000", "message 1")
	err2 := NewDomainError("GB-TEST-1000", "message 2")
	err3 := NewDomainError("GB-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	bound := ErrIntegrityFault.WithInterval("hourly").WithPath("/x")
	if !errors.Is(bound, ErrIntegrityFault) {
		t.Error("bound copy should still match its sentinel")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("GB-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("GB-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_CopiesDoNotMutateSentinel(t *testing.T) {
	_ = ErrFilesystem.WithDetails("x").WithInterval("daily").WithPath("/p").WithCause(errors.New("c"))

	if ErrFilesystem.Details != "" || ErrFilesystem.Interval != "" || ErrFilesystem.Path != "" || ErrFilesystem.Cause != nil {
		t.Errorf("sentinel modified: %+v", ErrFilesystem)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrLockHeld, CodeLockHeld) {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrLockHeld, "GB-LOCK-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), CodeLockHeld) {
		t.Error("IsDomainError should return false for non-DomainError")
	}
	if !IsDomainError(fmt.Errorf("wrapped: %w", ErrLockHeld), "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrNameCollision, CodeNameCollision},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrInvalidConfig), CodeInvalidConfig},
		{"joined errors", errors.Join(errors.New("plain"), ErrPopulationFailure), CodePopulationFailure},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrInvalidConfig, "GB-CONF-1001"},
		{ErrDuplicatePriority, "GB-CONF-1002"},
		{ErrIntegrityFault, "GB-INTG-2001"},
		{ErrNameCollision, "GB-INTG-2002"},
		{ErrPopulationFailure, "GB-POP-3001"},
		{ErrInterrupted, "GB-SIG-4001"},
		{ErrFilesystem, "GB-FS-5001"},
		{ErrLockHeld, "GB-LOCK-6001"},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("%s: Code = %q, want %q", tt.err.Message, tt.err.Code, tt.code)
		}
		if tt.err.Message == "" {
			t.Errorf("%s: Message should not be empty", tt.code)
		}
	}
}
