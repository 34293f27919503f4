package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
)

// actorKey is the gin context key holding the authenticated actor
const actorKey = "actor"

// authMiddleware resolves the bearer token into an actor. A missing or
// empty token is 401; a token that fails verification is 403.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "authentication required",
			})
			return
		}

		actor, err := s.authService.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom retrieves the actor set by authMiddleware
func actorFrom(c *gin.Context) authz.Actor {
	actor, _ := c.MustGet(actorKey).(authz.Actor)
	return actor
}
