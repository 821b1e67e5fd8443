package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aura-events/networking/internal/auth"
	"github.com/aura-events/networking/pkg/response"
)

const (
	// ContextUserID is the key for the acting profile ID in gin context.
	ContextUserID = "user_id"
	// ContextSessionID is the key for the auth session id in gin context.
	ContextSessionID = "session_id"
)

// JWT returns a middleware that validates JWT and sets the identity in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextSessionID, claims.SessionID())
		c.Next()
	}
}

// UserID returns the acting profile id set by JWT.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}

// SessionID returns the session id set by JWT.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
