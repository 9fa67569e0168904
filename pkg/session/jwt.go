package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stackscan/pkg/store"
)

const issuer = "stackscan"

// DefaultTTL is the session lifetime when none is configured
const DefaultTTL = 7 * 24 * time.Hour

// Claims are the contents of a session token
type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UserID returns the store ID carried in the subject
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session subject %q", c.Subject)
	}
	return id, nil
}

// Manager issues and verifies HS256 session tokens
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewManager creates a Manager keyed from secret. A zero ttl uses DefaultTTL.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	key, err := deriveKey([]byte(secret), "session", 32)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{key: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the session lifetime
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for user
func (m *Manager) Issue(user store.User) (string, error) {
	if user.ID == 0 {
		return "", errors.New("cannot issue session for unsaved user")
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Login: user.Login,
		Name:  user.Name,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Parse verifies a session token and returns its claims
func (m *Manager) Parse(tokenValue string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenValue, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	return claims, nil
}
