package routes

import (
	"github.com/gin-gonic/gin"

	"authgate/internal/handlers"
	"authgate/internal/middleware"
	"authgate/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	tokens services.TokenService,
	authHandler *handlers.AuthHandler,
	otpHandler *handlers.OtpHandler,
	socialHandler *handlers.SocialHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/register-admin", authHandler.RegisterAdmin)
		auth.POST("/login", authHandler.Login)
		auth.POST("/send-otp", otpHandler.SendOtp)
		auth.POST("/verify-otp", otpHandler.VerifyOtp)
		auth.POST("/reset-password", otpHandler.ResetPassword)
		auth.POST("/social", socialHandler.SocialLogin)

		// ---- requires a valid session
		auth.GET("/me", middleware.RequireAuth(tokens), authHandler.Me)
	}

	health := r.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/db", healthHandler.HealthDB)
	}

	return r
}
