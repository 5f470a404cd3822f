package gateway

import (
	"errors"
	"fmt"
)

// SQLSTATE / PostgREST codes the application reacts to
const (
	CodeUniqueViolation       = "23505"
	CodeInsufficientPrivilege = "42501"
	CodeNoRows                = "PGRST116"
)

var (
	ErrPrivilegedNotConfigured = errors.New("privileged access not configured")
	ErrMissingFilter           = errors.New("update and delete require at least one filter")
)

// Error is a failed gateway call as reported by the remote side
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err was caused by a unique constraint
func IsUniqueViolation(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Code == CodeUniqueViolation
}

func policyViolation(table string) *Error {
	return &Error{
		Status:  403,
		Code:    CodeInsufficientPrivilege,
		Message: fmt.Sprintf("new row violates row-level security policy for table %q", table),
	}
}
