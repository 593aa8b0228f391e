package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"socialite/pkg/apperr"
	"socialite/pkg/helpers"
	"socialite/pkg/response"
)

const bearerPrefix = "Bearer "

// Auth extracts a bearer token from the Authorization header and validates
// it. Tokens are self-contained; no session store is consulted. On success
// the decoded identity is set in the Gin context for ownership checks.
func Auth(tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, apperr.New(apperr.Unauthenticated, "authorization header must be provided"))
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			response.Abort(c, apperr.New(apperr.Unauthenticated, "authorization header must be 'Bearer [token]'"))
			return
		}
		claims, err := tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			response.Abort(c, apperr.New(apperr.Unauthenticated, "invalid/expired token"))
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("userName", claims.Username)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
