package widget

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadSignature covers malformed and tampered field ids. Callers
// treat it like a cache miss so probing the endpoint leaks nothing.
var ErrBadSignature = errors.New("widget: invalid field id signature")

// Signer signs widget identifiers so clients cannot forge or enumerate
// cache keys. Token layout: "<id>.<base64url(hmac-sha256(id))>".
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

func (s *Signer) Sign(id string) string {
	return id + "." + s.mac(id)
}

// Verify checks the signature and returns the embedded identifier.
func (s *Signer) Verify(token string) (string, error) {
	idx := strings.LastIndexByte(token, '.')
	if idx <= 0 || idx == len(token)-1 {
		return "", ErrBadSignature
	}
	id, sig := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(id))) {
		return "", ErrBadSignature
	}
	return id, nil
}

func (s *Signer) mac(id string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
