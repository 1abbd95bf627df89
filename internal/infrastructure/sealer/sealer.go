// Package sealer encrypts session credentials before they are written to
// the session store, so a leaked Redis or Mongo dump does not hand out
// bearer tokens or refresh cookies.
package sealer

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	info      = "jobsheet session sealing v1"
)

// ErrOpen is returned when a sealed value cannot be authenticated.
var ErrOpen = errors.New("sealer: cannot open value")

// SecretBox seals values with NaCl secretbox under a key derived from a
// configured secret.
type SecretBox struct {
	key [keySize]byte
}

// New derives the sealing key from secret with HKDF-SHA256.
func New(secret string) (*SecretBox, error) {
	if secret == "" {
		return nil, errors.New("sealer: empty secret")
	}
	sb := &SecretBox{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, sb.key[:]); err != nil {
		return nil, fmt.Errorf("sealer: derive key: %w", err)
	}
	return sb, nil
}

// Seal encrypts plaintext and returns nonce||box as base64url.
func (s *SecretBox) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("sealer: nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *SecretBox) Open(sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}
