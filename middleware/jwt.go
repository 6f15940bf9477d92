package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/internal/error/response"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/services"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware initializes the authentication middleware
func InitAuthMiddleware(db *gorm.DB, cfg *config.Config) {
	jwtService = services.NewJWTService(db, cfg)
}

// extractToken strips the "Bearer " prefix from the authorization header
func extractToken(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authentication validates the bearer credential before any handler logic
// runs and stores the decoded staff identity on the context. A missing
// credential is 401; a credential that is present but invalid or expired is
// 403.
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := jwtService.ExtractClaims(extractToken(authHeader))
		if err != nil {
			response.FailWithMessage(c, code.ErrPermissionDenied, "Invalid token: "+err.Error(), nil)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userName", claims.Name)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set. Admins
// always pass. Must run after Authentication.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		callerRole, ok := role.(models.Role)
		if !ok {
			response.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		if callerRole == models.RoleAdmin {
			c.Next()
			return
		}
		for _, allowed := range roles {
			if callerRole == allowed {
				c.Next()
				return
			}
		}

		response.Fail(c, code.ErrPermissionDenied, nil)
		c.Abort()
	}
}

// AuthenticateAdmin validates the credential and requires the admin role
func AuthenticateAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// ActorClaims returns the authenticated staff identity stored by
// Authentication.
func ActorClaims(c *gin.Context) (*services.JWTClaims, bool) {
	value, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := value.(*services.JWTClaims)
	return claims, ok
}
