package middleware

import (
	"net/http"
	"strings"

	"splitly-be/internal/jwt"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the auth middleware stores the
// authenticated user's ID under.
const UserIDKey = "user_id"

// AuthMiddleware returns a Gin middleware that validates the bearer token
// from the Authorization header and attaches the embedded user ID to the
// request context. Requests without a valid token are rejected with 401
// before any handler runs.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": jwt.ErrMissingToken.Error(),
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": jwt.ErrInvalidToken.Error(),
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// extractToken accepts both "Bearer <token>" and a raw token value.
func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}

// GetUserID extracts the authenticated user's ID from the gin context.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
