package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medecho/clinical-scheduling/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Session is the authenticated identity carried through request contexts.
// It is an explicit value, never ambient state: handlers receive it from the
// middleware and pass identity down from there.
type Session struct {
	UserID uuid.UUID
	Role   user.Role
	Token  string
	JTI    string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationStore remembers logged-out tokens until they would have expired
// anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration, revoked RevocationStore) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue creates a session token for a user.
func (m *Manager) Issue(u *user.User) (string, error) {
	now := m.now()
	c := claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its session. Revoked tokens fail even
// when otherwise valid.
func (m *Manager) Verify(ctx context.Context, tokenString string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, c.ID)
		if err != nil {
			return Session{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Session{}, ErrTokenRevoked
		}
	}

	return Session{
		UserID: userID,
		Role:   user.Role(c.Role),
		Token:  tokenString,
		JTI:    c.ID,
	}, nil
}

// Logout revokes a verified session for the remainder of its lifetime.
func (m *Manager) Logout(ctx context.Context, s Session) error {
	if m.revoked == nil {
		return nil
	}
	return m.revoked.Revoke(ctx, s.JTI, m.ttl)
}

type sessionKey struct{}

// WithSession stores the session on a context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session placed by the auth middleware.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
