// Package domain defines the core domain models for genback.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError is a rotation error carrying a stable code plus the interval
// and filesystem path it concerns. Frontends switch on Code, never on Message.
type DomainError struct {
	Code     string // Error code (e.g., "GB-POP-3001")
	Message  string // Human-readable message
	Details  string // Optional additional details
	Interval string // Interval name, if any
	Path     string // Affected path, if any
	Cause    error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Interval != "" {
		fmt.Fprintf(&b, " (interval %s)", e.Interval)
	}
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " [path %s]", e.Path)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support by comparing codes.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func (e *DomainError) clone() *DomainError {
	c := *e
	return &c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(format string, args ...any) *DomainError {
	c := e.clone()
	if len(args) > 0 {
		c.Details = fmt.Sprintf(format, args...)
	} else {
		c.Details = format
	}
	return c
}

// WithInterval returns a copy of the error bound to an interval.
func (e *DomainError) WithInterval(name string) *DomainError {
	c := e.clone()
	c.Interval = name
	return c
}

// WithPath returns a copy of the error bound to a path.
func (e *DomainError) WithPath(path string) *DomainError {
	c := e.clone()
	c.Path = path
	return c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
// For joined errors the first DomainError found wins.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Error codes.
const (
	CodeInvalidConfig     = "GB-CONF-1001"
	CodeDuplicatePriority = "GB-CONF-1002"
	CodeIntegrityFault    = "GB-INTG-2001"
	CodeNameCollision     = "GB-INTG-2002"
	CodePopulationFailure = "GB-POP-3001"
	CodeInterrupted       = "GB-SIG-4001"
	CodeFilesystem        = "GB-FS-5001"
	CodeLockHeld          = "GB-LOCK-6001"
)

var (
	// ErrInvalidConfig indicates missing or malformed configuration.
	ErrInvalidConfig = NewDomainError(CodeInvalidConfig, "invalid configuration")

	// ErrDuplicatePriority indicates two intervals share a priority.
	ErrDuplicatePriority = NewDomainError(CodeDuplicatePriority, "duplicate interval priority")

	// ErrIntegrityFault indicates a latest pointer that does not resolve to
	// a real snapshot. It is never treated as "no backup yet".
	ErrIntegrityFault = NewDomainError(CodeIntegrityFault, "latest pointer does not resolve to a snapshot")

	// ErrNameCollision indicates the allocated snapshot name is not newer
	// than every existing snapshot of the interval.
	ErrNameCollision = NewDomainError(CodeNameCollision, "snapshot name collision")

	// ErrPopulationFailure indicates the data-mover or hardlink-copier failed.
	ErrPopulationFailure = NewDomainError(CodePopulationFailure, "snapshot population failed")

	// ErrInterrupted indicates a run whose context was cancelled between
	// intervals.
	ErrInterrupted = NewDomainError(CodeInterrupted, "rotation interrupted")

	// ErrFilesystem indicates an unexpected filesystem failure.
	ErrFilesystem = NewDomainError(CodeFilesystem, "filesystem error")

	// ErrLockHeld indicates another run holds the run lock.
	ErrLockHeld = NewDomainError(CodeLockHeld, "another run is in progress")
)
