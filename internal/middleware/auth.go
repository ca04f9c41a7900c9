package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huddleup/huddle/backend/internal/services"
	"github.com/huddleup/huddle/backend/internal/utils"
	"github.com/huddleup/huddle/backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// AuthRequired is a middleware that checks for a valid JWT token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// GroupAdminRequired rejects callers who hold no admin membership at all.
// It is a coarse pre-filter: the membership service still verifies the
// caller against the specific group's admin on every operation, and that
// check is the authoritative one.
func GroupAdminRequired(memberships *services.MembershipService) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, err := memberships.IsGroupAdmin(GetUserID(c))
		if err != nil {
			response.ServerError(c, "failed to verify admin status")
			c.Abort()
			return
		}
		if !isAdmin {
			response.Forbidden(c, "you are not an admin of any group")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetEmail gets the current user email from context.
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}
