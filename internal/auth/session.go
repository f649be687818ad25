// Package auth validates the admin session cookie that guards the
// diagnostic routes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the signed admin session.
const CookieName = "admin_session"

var (
	// ErrNoSecret is returned when a validator is built without a signing secret.
	ErrNoSecret = errors.New("admin session secret is empty")
	// ErrForbidden is returned for a valid session whose email is not the admin's.
	ErrForbidden = errors.New("session does not belong to the admin")
)

// Claims holds the admin session payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// SessionService validates HS256 admin sessions. Sessions are issued by the
// site's login flow, which shares the signing secret.
type SessionService struct {
	secret []byte
	email  string
	now    func() time.Time
}

// NewSessionService creates a SessionService. When email is non-empty only
// sessions whose email claim matches it (case-insensitively) are accepted.
func NewSessionService(secret, email string) (*SessionService, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &SessionService{
		secret: []byte(secret),
		email:  strings.ToLower(strings.TrimSpace(email)),
		now:    time.Now,
	}, nil
}

// Validate parses a session token and checks signature, expiry and owner.
// A well-signed session for another account returns its claims with ErrForbidden.
func (s *SessionService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session claims")
	}
	if s.email != "" && strings.ToLower(claims.Email) != s.email {
		return claims, ErrForbidden
	}
	return claims, nil
}
