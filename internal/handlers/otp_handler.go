package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"authgate/internal/models"
	"authgate/internal/services"
)

type OtpHandler struct {
	otps   services.OtpService
	logger zerolog.Logger
}

func NewOtpHandler(otps services.OtpService, logger zerolog.Logger) *OtpHandler {
	return &OtpHandler{otps: otps, logger: logger}
}

// @Summary      Send a one-time passcode
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.SendOtpRequest  true  "Email and OTP type"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/send-otp [post]
func (h *OtpHandler) SendOtp(c *gin.Context) {
	var req models.SendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and type are required.")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	purpose := models.NormalizeOtpPurpose(req.Type)
	if email == "" || req.Type == "" {
		respondError(c, http.StatusBadRequest, "Email and type are required.")
		return
	}
	if purpose == "" {
		respondError(c, http.StatusBadRequest, "Invalid OTP type.")
		return
	}

	expiresInMinutes, err := h.otps.Request(email, purpose)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "Email not found.")
			return
		}
		h.logger.Error().Err(err).Str("email", email).Msg("otp request failed")
		respondError(c, http.StatusInternalServerError, "Failed to send OTP.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"message":          "OTP sent.",
		"expiresInMinutes": expiresInMinutes,
	})
}

// @Summary      Verify a one-time passcode
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyOtpRequest  true  "Email, OTP and type"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify-otp [post]
func (h *OtpHandler) VerifyOtp(c *gin.Context) {
	var req models.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email, otp, and type are required.")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	otp := strings.TrimSpace(req.Otp)
	purpose := models.NormalizeOtpPurpose(req.Type)
	if email == "" || otp == "" || purpose == "" {
		respondError(c, http.StatusBadRequest, "Email, otp, and type are required.")
		return
	}

	if err := h.otps.Verify(email, otp, purpose); err != nil {
		if errors.Is(err, services.ErrOtpInvalid) {
			respondError(c, http.StatusBadRequest, "Invalid or expired OTP.")
			return
		}
		h.logger.Error().Err(err).Str("email", email).Msg("otp verify failed")
		respondError(c, http.StatusInternalServerError, "Failed to verify OTP.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "OTP verified.",
	})
}

// @Summary      Reset password with a verified OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResetPasswordRequest  true  "Email, OTP and new password"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *OtpHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email, otp, and newPassword are required.")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	otp := strings.TrimSpace(req.Otp)
	if email == "" || otp == "" || req.NewPassword == "" {
		respondError(c, http.StatusBadRequest, "Email, otp, and newPassword are required.")
		return
	}
	// only the password-verification purpose can authorize a reset
	if req.Type != "" && models.NormalizeOtpPurpose(req.Type) != models.OtpPurposePassword {
		respondError(c, http.StatusBadRequest, "Invalid OTP type.")
		return
	}

	if err := h.otps.VerifyForReset(email, otp, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrOtpInvalid) {
			respondError(c, http.StatusBadRequest, "Invalid or expired OTP.")
			return
		}
		h.logger.Error().Err(err).Str("email", email).Msg("password reset failed")
		respondError(c, http.StatusInternalServerError, "Failed to reset password.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Password updated.",
	})
}
