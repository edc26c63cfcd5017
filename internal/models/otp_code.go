package models

import "time"

const (
	OtpPurposeEmail    = "email-verification"
	OtpPurposePassword = "password-verification"
)

// OtpCode holds only the bcrypt hash of the code, never the plaintext.
// At most one live row exists per (email, purpose): issuing a new code
// deletes any previous row for the pair.
type OtpCode struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Purpose   string    `json:"type"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeOtpPurpose accepts both dash and underscore spellings and
// returns the canonical purpose, or "" if the value is not recognised.
func NormalizeOtpPurpose(value string) string {
	switch value {
	case "email-verification", "email_verification":
		return OtpPurposeEmail
	case "password-verification", "password_verification":
		return OtpPurposePassword
	}
	return ""
}

type SendOtpRequest struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
	Type  string `json:"type"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Otp         string `json:"otp"`
	Type        string `json:"type"`
	NewPassword string `json:"newPassword"`
}
