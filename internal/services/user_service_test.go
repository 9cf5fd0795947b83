package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func newUserSvc(t *testing.T) *UserService {
	t.Helper()
	return &UserService{
		DB:        newTestDB(t),
		JWTSecret: []byte("test-secret"),
		TokenTTL:  time.Hour,
	}
}

func TestRegister_NormalizesEmailAndHashesPassword(t *testing.T) {
	svc := newUserSvc(t)

	u, err := svc.Register(context.Background(), "  Sam  ", "  Sam@Example.COM ", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "sam@example.com" {
		t.Fatalf("email = %q", u.Email)
	}
	if u.Name != "Sam" {
		t.Fatalf("name = %q", u.Name)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserSvc(t)

	if _, err := svc.Register(context.Background(), "A", "a@example.com", "password1"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "B", "A@EXAMPLE.com", "password2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	svc := newUserSvc(t)

	reg, err := svc.Register(context.Background(), "Sam", "sam@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	u, token, err := svc.Login(context.Background(), "SAM@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != reg.ID {
		t.Fatalf("logged-in user id = %d, want %d", u.ID, reg.ID)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "sam@example.com" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newUserSvc(t)

	if _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "sam@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newUserSvc(t)
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestProfile_Missing(t *testing.T) {
	svc := newUserSvc(t)
	if _, err := svc.Profile(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
