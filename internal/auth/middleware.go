package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const scopeContextKey = "accessScope"

// RequireScope returns a middleware that verifies the bearer token and
// injects the derived AccessScope into the request context. Requests without
// a valid token are rejected with 401.
func RequireScope(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		scope, err := verifier.VerifyHeader(authHeader)
		if err != nil {
			slog.Warn("token verification failed",
				"path", c.Request.URL.Path,
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(scopeContextKey, scope)
		c.Next()
	}
}

// RequireAdmin rejects requests whose scope is not an administrator's.
// Must be registered after RequireScope.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := ScopeFrom(c)
		if !ok || !scope.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator privileges required"})
			return
		}
		c.Next()
	}
}

// ScopeFrom extracts the AccessScope injected by RequireScope.
func ScopeFrom(c *gin.Context) (AccessScope, bool) {
	v, exists := c.Get(scopeContextKey)
	if !exists {
		return AccessScope{}, false
	}
	scope, ok := v.(AccessScope)
	return scope, ok
}
