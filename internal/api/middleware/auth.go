package middleware

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "auth.claims"
	userIDKey = "auth.user_id"
)

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Authenticate(raw string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token. EventSource
// clients cannot set headers, so the token is also accepted from the
// access_token query parameter.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("access_token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Authenticate(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// Claims returns the claims stored by RequireAuth.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// UserID returns the authenticated user id, or nil for anonymous requests.
func UserID(c *gin.Context) *string {
	claims, ok := Claims(c)
	if !ok || claims.UserID == "" {
		return nil
	}
	id := claims.UserID
	return &id
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
