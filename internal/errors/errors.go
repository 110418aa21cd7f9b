// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrMissingSignature indicates the webhook request carried no signature header.
	ErrMissingSignature = errors.New("missing signature")

	// ErrInvalidSignature indicates the webhook signature did not match the body.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNoOpenStep indicates a selection arrived while the user has no
	// questionnaire step awaiting an answer.
	ErrNoOpenStep = errors.New("no open questionnaire step")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// LookupError represents a news lookup failure with request context.
type LookupError struct {
	Category   string
	Language   string
	Country    string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("news lookup failed (category=%s, language=%s, country=%s, status=%d): %v",
			e.Category, e.Language, e.Country, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("news lookup failed (category=%s, language=%s, country=%s): %v",
		e.Category, e.Language, e.Country, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new lookup error.
func NewLookupError(category, language, country string, statusCode int, err error) *LookupError {
	return &LookupError{
		Category:   category,
		Language:   language,
		Country:    country,
		StatusCode: statusCode,
		Err:        err,
	}
}

// SendError represents a reply delivery failure reported by the
// messaging platform. Body carries the raw diagnostic payload.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("reply send failed (status=%d): %s", e.StatusCode, e.Body)
}

// NewSendError creates a new send error.
func NewSendError(statusCode int, body string) *SendError {
	return &SendError{
		StatusCode: statusCode,
		Body:       body,
	}
}
