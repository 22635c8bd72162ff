package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arihant027/VS-News/app/auth"
	"github.com/Arihant027/VS-News/app/database"
)

const userContextKey = "user"

// authMiddleware resolves the bearer token to an active user record
func authMiddleware(verifier *auth.Verifier, users database.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Provide a token in the Authorization: Bearer <token> header",
			})
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			slog.Debug("Rejected bearer token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		var user *database.User
		if claims.Subject != "" {
			user, err = users.GetUser(c.Request.Context(), claims.Subject)
		}
		if err == nil && user == nil && claims.Email != "" {
			user, err = users.GetUserByEmail(c.Request.Context(), claims.Email)
		}
		if err != nil {
			slog.Error("Database error", "operation", "authenticate", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if user == nil || user.Status != database.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := currentUser(c); user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func requireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := currentUser(c); user == nil || !user.IsSuperadmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Superadmin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *database.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*database.User)
	return user
}
