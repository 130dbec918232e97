package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/response"
	"github.com/docvault/docvault/internal/service"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), getUserID(c), req.Name, req.Phone)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}
