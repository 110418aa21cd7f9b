package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("store answer: %w", ErrNoOpenStep)
	assert.ErrorIs(t, wrapped, ErrNoOpenStep)
	assert.NotErrorIs(t, wrapped, ErrInvalidSignature)
}

func TestLookupErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := NewLookupError("business", "en", "jp", 0, cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "category=business")
}

func TestLookupErrorWithStatus(t *testing.T) {
	t.Parallel()

	err := NewLookupError("science", "fr", "ca", 401, stderrors.New("unauthorized"))
	assert.Contains(t, err.Error(), "status=401")
}

func TestSendError(t *testing.T) {
	t.Parallel()

	err := NewSendError(429, `{"message":"rate limited"}`)
	assert.Contains(t, err.Error(), "status=429")
	assert.Contains(t, err.Error(), "rate limited")
}
