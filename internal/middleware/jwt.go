package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/jwt"
	"github.com/docvault/docvault/internal/pkg/response"
	"github.com/docvault/docvault/internal/repo"
)

const ContextUserIDKey = "user_id"

// JWTAuth validates the bearer token and re-fetches the account on every
// request: a structurally valid token is still rejected when the user no
// longer exists or was never verified.
func JWTAuth(secret []byte, users *repo.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if user.Verified == 0 {
			response.Error(c, errcode.ErrNotVerified, "account not verified")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}
