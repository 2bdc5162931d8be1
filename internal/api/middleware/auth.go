package middleware

import (
	"net/http"
	"strings"

	"github.com/Ivan2330/english-platform-deploy/internal/auth"
	"github.com/Ivan2330/english-platform-deploy/internal/models"
	"github.com/Ivan2330/english-platform-deploy/internal/storage"

	"github.com/gin-gonic/gin"
)

const userKey = "current_user"

// JWTAuth validates the Bearer credential and loads the account behind
// it into the request context.
func JWTAuth(tokens *auth.TokenService, store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		userID, err := tokens.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		user, err := store.GetUserByID(userID)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account not found or inactive"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// StaffOnly rejects requests from accounts that may not manage the
// platform. Must run after JWTAuth.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFrom(c)
		if user == nil || !user.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user doesn't have access"})
			return
		}
		c.Next()
	}
}

// AdminOnly restricts a route to admin accounts. Must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFrom(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated account set by JWTAuth, or nil.
func UserFrom(c *gin.Context) *models.User {
	if val, ok := c.Get(userKey); ok {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}
