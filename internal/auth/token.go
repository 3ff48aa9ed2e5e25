package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload minted by the identity service. This service
// only verifies tokens; it never issues them.
type Claims struct {
	IsAdmin             bool     `json:"is_admin"`
	AllowedCustomsCodes []string `json:"allowed_customs_codes"`
	jwt.RegisteredClaims
}

// TokenVerifier verifies HS256 bearer tokens and derives the access scope
// carried in their claims.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// VerifyHeader extracts the bearer token from an Authorization header and
// returns the access scope encoded in its claims.
func (v *TokenVerifier) VerifyHeader(authHeader string) (AccessScope, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return AccessScope{}, fmt.Errorf("authorization header is not a bearer token")
	}
	return v.Verify(strings.TrimPrefix(authHeader, prefix))
}

// Verify parses and validates a signed token string.
func (v *TokenVerifier) Verify(tokenStr string) (AccessScope, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return AccessScope{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return AccessScope{}, fmt.Errorf("invalid token")
	}

	return AccessScope{
		Username:            claims.Subject,
		Admin:               claims.IsAdmin,
		AllowedCustomsCodes: claims.AllowedCustomsCodes,
	}, nil
}
