package common

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// AppError represents application-specific errors.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors.
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreadable marks a document no acquisition stage could read; the
	// claim continues without it.
	ErrUnreadable = errors.New("unreadable document")

	// ErrTransient marks failures worth retrying: network timeouts, rate
	// limits, 5xx responses from external services.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent marks failures that will not improve on retry: malformed
	// model output, safety refusals, missing binaries.
	ErrPermanent = errors.New("permanent failure")
)

// NewAppError builds an AppError with a cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError wraps err with a message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Transient wraps err so IsTransient reports true.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Permanent wraps err so IsTransient reports false even for network-shaped
// causes.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsTransient classifies an error for the retry policy. Explicit markers
// win; otherwise network errors and deadline expiry count as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermanent) {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
