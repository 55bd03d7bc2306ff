// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrQuotaExceeded       = errors.New("device quota exceeded for current plan")
	ErrNotConfigured       = errors.New("not configured")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUserNotFound        = errors.New("user not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrInvalidCursor       = errors.New("invalid pagination cursor")
)

// ValidationError reports user-correctable input problems. Message is safe
// to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a persistence failure. Its detail is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// NotConfiguredError is returned when an optional external service is not
// configured in this deployment.
type NotConfiguredError struct {
	Service string
}

func (e *NotConfiguredError) Error() string {
	return e.Service + " not configured"
}

// Is makes errors.Is(err, ErrNotConfigured) match.
func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
