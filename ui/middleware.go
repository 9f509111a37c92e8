package ui

import (
	"strings"

	"github.com/gin-gonic/gin"

	"datalens/domain/dataset"
	"datalens/internal/errors"
)

// userContextKey is where the authenticated user lives on the gin context
const userContextKey = "authenticated_user"

// requireAuth resolves the bearer token and aborts unauthenticated
// requests before any handler runs
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			respondError(c, errors.Unauthorized("missing bearer token"))
			c.Abort()
			return
		}

		user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Set("session_token", token)
		c.Next()
	}
}

// currentUser returns the user placed on the context by requireAuth
func currentUser(c *gin.Context) *dataset.User {
	user, _ := c.MustGet(userContextKey).(*dataset.User)
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
