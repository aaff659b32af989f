package widget

import (
	"errors"
	"strings"
	"testing"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("secret")
	token := s.Sign("0b0ddbc6-2514-45b2-b62a-e35a04d4ed06")

	id, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != "0b0ddbc6-2514-45b2-b62a-e35a04d4ed06" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestSigner_RejectsTamperedID(t *testing.T) {
	s := NewSigner("secret")
	token := s.Sign("original-id")
	forged := strings.Replace(token, "original", "someone", 1)

	if _, err := s.Verify(forged); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestSigner_RejectsWrongKey(t *testing.T) {
	token := NewSigner("key-a").Sign("id")
	if _, err := NewSigner("key-b").Verify(token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestSigner_RejectsMalformedTokens(t *testing.T) {
	s := NewSigner("secret")
	for _, token := range []string{"", "no-separator", ".sigonly", "idonly."} {
		if _, err := s.Verify(token); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("token %q: expected ErrBadSignature, got %v", token, err)
		}
	}
}
