package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateProfileRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (s *Server) handleGetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	}
}

func (s *Server) handleUpdateMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := bindStrict(c, &req); err != nil {
			respondError(c, err)
			return
		}

		user, err := s.auth.UpdateProfile(c.Request.Context(), currentUser(c), req.Email, req.FullName)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// handleDeleteMe removes the account and every dataset it owns,
// files included. Sessions cascade with the user row.
func (s *Server) handleDeleteMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		ctx := c.Request.Context()

		if err := s.datasets.DeleteAllForUser(ctx, user.ID); err != nil {
			respondError(c, err)
			return
		}
		if err := s.auth.DeleteAccount(ctx, user.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
	}
}
