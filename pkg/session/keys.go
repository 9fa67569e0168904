// Package session issues signed session tokens and seals secrets at rest.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest accepted session secret
const MinSecretLength = 16

// ErrWeakSecret means the configured secret is too short
var ErrWeakSecret = fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)

// deriveKey expands the shared secret into an independent key per purpose
func deriveKey(secret []byte, purpose string, size int) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("stackscan "+purpose)), key); err != nil {
		return nil, errors.New("failed to derive " + purpose + " key")
	}
	return key, nil
}
