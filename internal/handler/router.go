package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/middleware"
	"github.com/docvault/docvault/internal/repo"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Documents *DocumentHandler
	Shares    *ShareHandler
	UserRepo  *repo.UserRepo
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/verify-otp", deps.Auth.VerifyOTP)
	api.POST("/auth/resend-otp", middleware.RateLimit(5*time.Second), deps.Auth.ResendOTP)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret, deps.UserRepo))
	authGroup.GET("/auth/me", deps.Auth.Me)

	authGroup.GET("/users/profile", deps.Users.GetProfile)
	authGroup.PUT("/users/profile", deps.Users.UpdateProfile)

	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Update)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)

	authGroup.POST("/documents/:id/share", deps.Shares.Create)
	authGroup.GET("/documents/:id/share", deps.Shares.GetActive)
	authGroup.DELETE("/documents/:id/share", deps.Shares.Revoke)

	api.GET("/public/shared/:token", deps.Shares.PublicGet)
}
