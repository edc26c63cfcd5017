package handlers

import (
	"github.com/gin-gonic/gin"

	"authgate/internal/services"
	"authgate/internal/utils"
)

// respondError writes the envelope every error response shares.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// randomPlaceholderPassword hashes 32 random bytes; the plaintext is
// discarded so the resulting account cannot be logged into by password.
func randomPlaceholderPassword(auth services.AuthService) (string, error) {
	plain, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	return auth.HashPassword(plain)
}
