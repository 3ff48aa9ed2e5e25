package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestVerifyDerivesScope(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	signed := signToken(t, testSecret, Claims{
		IsAdmin:             false,
		AllowedCustomsCodes: []string{"811010", "852990"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	scope, err := verifier.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if scope.Username != "analyst" {
		t.Errorf("username = %q", scope.Username)
	}
	if scope.Admin {
		t.Error("scope unexpectedly admin")
	}
	if !scope.Restricted() {
		t.Error("non-admin scope must be restricted")
	}
	if len(scope.AllowedCustomsCodes) != 2 || scope.AllowedCustomsCodes[0] != "811010" {
		t.Errorf("allowed codes = %v", scope.AllowedCustomsCodes)
	}
}

func TestVerifyAdminScope(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	signed := signToken(t, testSecret, Claims{
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	scope, err := verifier.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !scope.Admin {
		t.Error("scope should be admin")
	}
	if scope.Restricted() {
		t.Error("admin scope must not be restricted")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	signed := signToken(t, "some-other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	if _, err := verifier.Verify(signed); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	signed := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	if _, err := verifier.Verify(signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestVerifyHeader(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	signed := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "analyst",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	scope, err := verifier.VerifyHeader("Bearer " + signed)
	if err != nil {
		t.Fatalf("VerifyHeader failed: %v", err)
	}
	if scope.Username != "analyst" {
		t.Errorf("username = %q", scope.Username)
	}

	if _, err := verifier.VerifyHeader(signed); err == nil {
		t.Fatal("expected error for header without Bearer prefix")
	}
	if _, err := verifier.VerifyHeader("Basic dXNlcjpwYXNz"); err == nil {
		t.Fatal("expected error for non-bearer scheme")
	}
}
