package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrTampered means a sealed value failed authentication
var ErrTampered = errors.New("sealed value is corrupt or was sealed with another key")

// Sealer encrypts short secrets such as access tokens with NaCl secretbox
type Sealer struct {
	key [32]byte
}

// NewSealer derives a sealing key from secret
func NewSealer(secret string) (*Sealer, error) {
	k, err := deriveKey([]byte(secret), "token sealing", 32)
	if err != nil {
		return nil, err
	}
	s := &Sealer{}
	copy(s.key[:], k)
	return s, nil
}

// Seal encrypts plaintext and returns nonce||box, base64 encoded
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawStdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrTampered
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrTampered
	}
	return string(plain), nil
}
