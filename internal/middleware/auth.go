package middleware

import (
	"net/http"
	"strings"

	"orgregistry/internal/auth"
	"orgregistry/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const claimsKey = "admin_claims"

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer"
// token and stores the claims for ClaimsFrom.
func RequireAdmin(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Missing bearer token", ""))
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid or expired token", ""))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAdmin.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
