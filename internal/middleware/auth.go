package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/policy"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

const principalKey = "principal"

// Authenticate verifies the bearer token and stores the asserted principal
// in the request context. Authorization decisions happen later, in the
// policy package; this middleware only establishes who is calling.
func Authenticate(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		principal, err := auth.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom extracts the authenticated principal set by Authenticate.
func PrincipalFrom(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return policy.Principal{}, false
	}
	principal, ok := value.(policy.Principal)
	return principal, ok
}

// SetPrincipal is a test hook for exercising handlers without a real token.
func SetPrincipal(c *gin.Context, p policy.Principal) {
	c.Set(principalKey, p)
}
