package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/response"
	"github.com/docvault/docvault/internal/service"
)

type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

type issueGrantRequest struct {
	Email    string `json:"email"`
	TTLHours int    `json:"ttl_hours"`
}

func (h *ShareHandler) Create(c *gin.Context) {
	var req issueGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	grant, err := h.shares.IssueGrant(c.Request.Context(), getUserID(c), c.Param("id"), service.IssueGrantInput{
		RecipientEmail: req.Email,
		TTLHours:       req.TTLHours,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"share": grant})
}

func (h *ShareHandler) GetActive(c *gin.Context) {
	grant, err := h.shares.GetActiveGrant(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"share": grant})
}

func (h *ShareHandler) Revoke(c *gin.Context) {
	if err := h.shares.RevokeGrant(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ShareHandler) PublicGet(c *gin.Context) {
	view, err := h.shares.ResolveGrant(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}
