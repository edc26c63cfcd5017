package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_URL"`
}

type AuthConfig struct {
	JWTSecret         string `env:"JWT_SECRET"`
	AdminSecurityCode string `env:"ADMIN_SECURITY_CODE"`
	OTPExpiryMinutes  int    `env:"OTP_EXPIRES_IN_MINUTES" envDefault:"2"`
}

type EmailConfig struct {
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	FromEmail    string `env:"SMTP_FROM"`
}

type ProvidersConfig struct {
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`
	AppleClientID  string `env:"APPLE_CLIENT_ID"`
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Email     EmailConfig
	Providers ProvidersConfig
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.Auth.OTPExpiryMinutes <= 0 {
		cfg.Auth.OTPExpiryMinutes = 2
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = cfg.Email.SMTPUser
	}
	for i, origin := range cfg.Server.AllowedOrigins {
		cfg.Server.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return &cfg, nil
}
