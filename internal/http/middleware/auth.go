// README: Firebase bearer-token auth; optional or required per route group.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"packwise/internal/infra"
)

const callerKey = "packwise.caller"

// Auth verifies "Authorization: Bearer <token>". With required=false a
// missing header passes through anonymously; a bad token is always 401.
// A nil verifier disables auth entirely, except required routes answer 401.
func Auth(verifier infra.TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || verifier == nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		caller, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the verified caller, or nil for anonymous requests.
func CallerFrom(c *gin.Context) *infra.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*infra.Caller)
	return caller
}

// CallerUID returns the verified caller's UID, or "".
func CallerUID(c *gin.Context) string {
	if caller := CallerFrom(c); caller != nil {
		return caller.UID
	}
	return ""
}
