package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-32bytes-long!!"

// issue signs a session the way the login flow does.
func issue(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return signed
}

func newTestSessionService(t *testing.T, email string) *SessionService {
	t.Helper()
	s, err := NewSessionService(testSecret, email)
	if err != nil {
		t.Fatalf("NewSessionService: %v", err)
	}
	return s
}

func TestNewSessionService_RequiresSecret(t *testing.T) {
	if _, err := NewSessionService("", "admin@example.org"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("err = %v, want ErrNoSecret", err)
	}
}

func TestValidate_AdminSession(t *testing.T) {
	s := newTestSessionService(t, "admin@example.org")

	token := issue(t, testSecret, "admin@example.org", time.Hour)
	claims, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Email != "admin@example.org" {
		t.Errorf("Email = %q, want %q", claims.Email, "admin@example.org")
	}
}

func TestValidate_EmailCaseInsensitive(t *testing.T) {
	s := newTestSessionService(t, " Admin@Example.org ")

	token := issue(t, testSecret, "admin@example.ORG", time.Hour)
	if _, err := s.Validate(token); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_OtherAccountForbidden(t *testing.T) {
	s := newTestSessionService(t, "admin@example.org")

	token := issue(t, testSecret, "visitor@example.org", time.Hour)

	claims, err := s.Validate(token)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if claims == nil || claims.Email != "visitor@example.org" {
		t.Errorf("claims = %+v, want the visitor's claims", claims)
	}
}

func TestValidate_AnyEmailWhenUnrestricted(t *testing.T) {
	s := newTestSessionService(t, "")

	token := issue(t, testSecret, "someone@example.org", time.Hour)
	if _, err := s.Validate(token); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	s := newTestSessionService(t, "")

	token := issue(t, "another-secret-32-bytes-long!!!", "admin@example.org", time.Hour)
	if _, err := s.Validate(token); err == nil {
		t.Error("expected error validating session with wrong secret")
	}
}

func TestValidate_Expired(t *testing.T) {
	s := newTestSessionService(t, "")

	token := issue(t, testSecret, "admin@example.org", -time.Second)
	if _, err := s.Validate(token); err == nil {
		t.Error("expected error for expired session")
	}
}

func TestValidate_MissingExpiry(t *testing.T) {
	s := newTestSessionService(t, "")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "admin@example.org"})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := s.Validate(signed); err == nil {
		t.Error("expected error for session without expiry")
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	s := newTestSessionService(t, "")

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Email:            "admin@example.org",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := s.Validate(signed); err == nil {
		t.Error("expected error for HS512 session")
	}
}

func TestValidate_Garbage(t *testing.T) {
	s := newTestSessionService(t, "")
	if _, err := s.Validate("not-a-jwt"); err == nil {
		t.Error("expected error for garbage token")
	}
}
