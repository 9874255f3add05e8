package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// AuthMiddleware verifies the bearer token and stores user id and role.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.Unauthorized(c, "Thiếu token xác thực")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "Token không hợp lệ hoặc đã hết hạn")
			c.Abort()
			return
		}

		SetIdentity(c, claims.UserID, claims.Role)
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the caller's role holds perm.
func RequirePermission(perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Unauthorized(c, "Chưa xác thực")
			c.Abort()
			return
		}
		if !auth.Can(role, perm) {
			response.Forbidden(c, "Bạn không có quyền thực hiện thao tác này")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetIdentity stores the authenticated identity on the context.
func SetIdentity(c *gin.Context, userID uuid.UUID, role auth.Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the authenticated user's role.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(ctxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}
