package content

import (
	"errors"
	"fmt"

	"cozyvile/gateway"
	"cozyvile/models"
)

var (
	ErrNotConfigured = errors.New("not configured")
	ErrNotFound      = errors.New("record not found")
)

const (
	HintPrivileged = "set SUPABASE_SERVICE_ROLE_KEY (or GATEWAY_BACKEND=sql with DATABASE_DSN) and restart the server"
	HintAssetStore = "set STORAGE_BACKEND and its credentials and restart the server"
	HintPolicy     = "the database rejected the change: check the row-level security policies of the table, or that the privileged key is the service role key"
)

// ConfigurationError is returned before any remote call when a required
// collaborator was not configured for this deployment
type ConfigurationError struct {
	What string
	Hint string
}

func (e *ConfigurationError) Error() string {
	return e.What + " not configured: " + e.Hint
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

// RemoteOperationError is a failed gateway or storage call of a write.
// Created is set when the record itself was stored before the failure.
type RemoteOperationError struct {
	Op      string
	Created string
	Hint    string
	Err     error
}

func (e *RemoteOperationError) Error() string {
	msg := e.Op + ": " + e.Err.Error()
	if e.Created != "" {
		msg += fmt.Sprintf(" (record %s was created, some of its images may be missing)", e.Created)
	}
	return msg
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func validationError(err error) error {
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		return &ValidationError{Field: fieldErr.Field, Message: fieldErr.Message}
	}
	return &ValidationError{Field: "form", Message: err.Error()}
}

// remote wraps a failed write. The hint names the usual cause of a rejected
// write unless the remote side sent its own.
func remote(op string, err error) *RemoteOperationError {
	hint := HintPolicy
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Hint != "" {
		hint = gwErr.Hint
	}
	return &RemoteOperationError{Op: op, Err: err, Hint: hint}
}

func privilegedMissing() error {
	return &ConfigurationError{What: "privileged database access", Hint: HintPrivileged}
}

func assetStoreMissing() error {
	return &ConfigurationError{What: "asset store", Hint: HintAssetStore}
}
