// Package signature validates LINE webhook signatures.
//
// LINE signs every webhook delivery with base64(HMAC-SHA256(channel
// secret, raw request body)) in the x-line-signature header. Requests
// that fail validation must be rejected before any event processing.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
)

// Verifier checks webhook signatures against a channel secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given channel secret.
func NewVerifier(channelSecret string) *Verifier {
	return &Verifier{secret: []byte(channelSecret)}
}

// Verify checks the provided signature against the raw request body.
// Returns ErrMissingSignature when the header was absent and
// ErrInvalidSignature on mismatch. The comparison is constant-time;
// it must not short-circuit on the first differing byte.
func (v *Verifier) Verify(body []byte, providedSignature string) error {
	if providedSignature == "" {
		return domerrors.ErrMissingSignature
	}

	expected := Sign(v.secret, body)
	if !hmac.Equal([]byte(expected), []byte(providedSignature)) {
		return domerrors.ErrInvalidSignature
	}
	return nil
}

// Sign computes base64(HMAC-SHA256(secret, body)).
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
