package app

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"authgate/internal/config"
	"authgate/internal/handlers"
	"authgate/internal/middleware"
	"authgate/internal/migrations"
	"authgate/internal/repositories"
	"authgate/internal/routes"
	"authgate/internal/services"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "authgate/docs"
)

func Run() error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("closing database")
		}
	}()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	otpRepo := repositories.NewOtpRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, userRepo)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	otpService := services.NewOtpService(otpRepo, userRepo, authService, emailService, cfg.Auth.OTPExpiryMinutes, logger)

	verifier, err := services.NewJwksVerifier(cfg.Providers.GoogleClientID, cfg.Providers.AppleClientID)
	if err != nil {
		return fmt.Errorf("identity providers: %w", err)
	}

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userRepo, authService, tokenService, cfg.Auth.AdminSecurityCode, logger)
	otpHandler := handlers.NewOtpHandler(otpService, logger)
	socialHandler := handlers.NewSocialHandler(userRepo, authService, tokenService, verifier, logger)
	healthHandler := handlers.NewHealthHandler(db)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, tokenService, authHandler, otpHandler, socialHandler, healthHandler)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", listenAddr).Msg("server listening")
	return router.Run(listenAddr)
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
