package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/authgate?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_SECURITY_CODE", "admin-code")
	t.Setenv("OTP_EXPIRES_IN_MINUTES", "5")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "admin-code", cfg.Auth.AdminSecurityCode)
	assert.Equal(t, 5, cfg.Auth.OTPExpiryMinutes)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mailer@example.com", cfg.Email.FromEmail, "from falls back to the SMTP user")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Auth.OTPExpiryMinutes)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
}

func TestLoadConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadConfig_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
