package signature

import (
	"encoding/base64"
	"errors"
	"testing"

	domerrors "github.com/newspick/newspick-linebot-go/internal/errors"
)

func TestVerifyValidSignature(t *testing.T) {
	t.Parallel()

	secret := "test_channel_secret"
	body := []byte(`{"destination":"U000","events":[]}`)

	v := NewVerifier(secret)
	sig := Sign([]byte(secret), body)

	if err := v.Verify(body, sig); err != nil {
		t.Errorf("Expected valid signature to verify, got %v", err)
	}
}

func TestVerifyMissingSignature(t *testing.T) {
	t.Parallel()

	v := NewVerifier("secret")
	err := v.Verify([]byte("body"), "")
	if !errors.Is(err, domerrors.ErrMissingSignature) {
		t.Errorf("Expected ErrMissingSignature, got %v", err)
	}
}

func TestVerifyMutatedBody(t *testing.T) {
	t.Parallel()

	secret := "secret"
	body := []byte(`{"events":[{"type":"message"}]}`)
	sig := Sign([]byte(secret), body)
	v := NewVerifier(secret)

	// Flip a single bit in each byte position; every mutation must fail.
	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01

		if err := v.Verify(mutated, sig); !errors.Is(err, domerrors.ErrInvalidSignature) {
			t.Fatalf("Expected ErrInvalidSignature for mutation at byte %d, got %v", i, err)
		}
	}
}

func TestVerifyMutatedSignature(t *testing.T) {
	t.Parallel()

	secret := "secret"
	body := []byte("payload")
	v := NewVerifier(secret)

	raw, err := base64.StdEncoding.DecodeString(Sign([]byte(secret), body))
	if err != nil {
		t.Fatalf("Failed to decode signature: %v", err)
	}
	raw[0] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	if err := v.Verify(body, tampered); !errors.Is(err, domerrors.ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature for tampered signature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	body := []byte("payload")
	sig := Sign([]byte("secret_a"), body)

	v := NewVerifier("secret_b")
	if err := v.Verify(body, sig); !errors.Is(err, domerrors.ErrInvalidSignature) {
		t.Errorf("Expected ErrInvalidSignature with wrong secret, got %v", err)
	}
}
