package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/pkg/errcode"
	"github.com/docvault/docvault/internal/pkg/response"
	"github.com/docvault/docvault/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AadhaarNumber string `json:"aadhaar_number"`
	Phone         string `json:"phone"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		AadhaarNumber: req.AadhaarNumber,
		Phone:         req.Phone,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": user.ID, "email": user.Email})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	user, token, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.auth.ResendOTP(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}
