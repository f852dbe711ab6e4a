package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks feed records that fail validation.
	ErrMalformedInput = errors.New("malformed input")
	// ErrExternalService marks failures reported by an upstream HTTP dependency.
	ErrExternalService = errors.New("external service error")
	// ErrConfiguration marks missing or invalid configuration discovered before a run.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that produced no result.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks deadline failures on external calls.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures that are safe to retry.
	ErrTransient = errors.New("transient failure")
	// ErrConflict marks a ledger identity that already exists with different content.
	ErrConflict = errors.New("persistence conflict")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a failure should be retried under the stage's
// backoff policy. Validation and configuration failures never retry.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrMalformedInput), errors.Is(err, ErrConflict):
		return false
	case errors.Is(err, ErrTransient), errors.Is(err, ErrTimeout), errors.Is(err, ErrExternalService):
		return true
	default:
		return false
	}
}

// Fatal reports whether a failure must abort the run before any external call
// is attempted.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
