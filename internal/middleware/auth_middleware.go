package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suitenest/hotel-backend/pkg/jwt"
)

// AdminContextKey is the key used to store admin claims in Gin context
const AdminContextKey = "admin"

// AdminContext represents the authenticated admin's information
type AdminContext struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthMiddleware creates a middleware that validates admin JWT tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token cannot be empty",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please log in again.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		c.Set(AdminContextKey, AdminContext{
			Email: claims.Email,
			Role:  claims.Role,
		})

		c.Next()
	}
}

// GetAdminContext retrieves the admin context set by AuthMiddleware
func GetAdminContext(c *gin.Context) (AdminContext, bool) {
	value, exists := c.Get(AdminContextKey)
	if !exists {
		return AdminContext{}, false
	}

	adminCtx, ok := value.(AdminContext)
	return adminCtx, ok
}
