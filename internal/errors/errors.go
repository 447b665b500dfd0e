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
	// ErrMalformedPayload indicates an inbound platform payload is missing
	// fields its declared kind requires (e.g. a location without coordinates).
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrListingWithoutImage indicates a listing record has an empty images array.
	ErrListingWithoutImage = errors.New("listing has no images")

	// ErrInvalidSignature indicates a webhook body did not match its signature header.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnexpectedStatus indicates an upstream HTTP API answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// IsMalformedPayload reports whether err is or wraps ErrMalformedPayload.
func IsMalformedPayload(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}

// ListingsError is the single handled failure kind of the bot:
// the nearby listings fetch failed (network, status or body).
type ListingsError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ListingsError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("listings fetch failed (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("listings fetch failed (url=%s): %v", e.URL, e.Err)
}

func (e *ListingsError) Unwrap() error {
	return e.Err
}

// NewListingsError creates a new listings fetch error.
func NewListingsError(url string, statusCode int, err error) *ListingsError {
	return &ListingsError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// SendError represents a failed outbound message to a messaging platform.
type SendError struct {
	Platform   string
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s send failed (status=%d): %v", e.Platform, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s send failed: %v", e.Platform, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
