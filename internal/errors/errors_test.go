package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingsError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewListingsError("http://localhost:8000/api/v1/listings", 0, cause)

	assert.Equal(t, "listings fetch failed (url=http://localhost:8000/api/v1/listings): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	withStatus := NewListingsError("http://x/listings", 502, ErrUnexpectedStatus)
	assert.Contains(t, withStatus.Error(), "status=502")
	assert.ErrorIs(t, withStatus, ErrUnexpectedStatus)

	var target *ListingsError
	wrapped := fmt.Errorf("handler: %w", withStatus)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 502, target.StatusCode)
}

func TestSendError(t *testing.T) {
	err := &SendError{Platform: "messenger", StatusCode: 400, Err: errors.New("bad recipient")}
	assert.Equal(t, "messenger send failed (status=400): bad recipient", err.Error())

	noStatus := &SendError{Platform: "line", Err: errors.New("timeout")}
	assert.Equal(t, "line send failed: timeout", noStatus.Error())
}

func TestIsMalformedPayload(t *testing.T) {
	assert.True(t, IsMalformedPayload(fmt.Errorf("location: %w", ErrMalformedPayload)))
	assert.False(t, IsMalformedPayload(ErrInvalidSignature))
	assert.False(t, IsMalformedPayload(nil))
}
