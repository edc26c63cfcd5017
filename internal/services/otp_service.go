package services

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"authgate/internal/models"
	"authgate/internal/repositories"
	"authgate/internal/utils"
)

var (
	ErrEmailNotFound = errors.New("email not found")
	// ErrOtpInvalid covers missing, expired and mismatched codes alike so
	// the response does not reveal which check failed.
	ErrOtpInvalid = errors.New("invalid or expired otp")
)

type OtpService interface {
	Request(email, purpose string) (expiresInMinutes int, err error)
	Verify(email, otp, purpose string) error
	VerifyForReset(email, otp, newPassword string) error
}

type otpService struct {
	otps          repositories.OtpRepository
	users         repositories.UserRepository
	auth          AuthService
	emails        EmailService
	expiryMinutes int
	logger        zerolog.Logger
}

func NewOtpService(
	otps repositories.OtpRepository,
	users repositories.UserRepository,
	auth AuthService,
	emails EmailService,
	expiryMinutes int,
	logger zerolog.Logger,
) OtpService {
	if expiryMinutes <= 0 {
		expiryMinutes = 2
	}
	return &otpService{
		otps:          otps,
		users:         users,
		auth:          auth,
		emails:        emails,
		expiryMinutes: expiryMinutes,
		logger:        logger,
	}
}

func (s *otpService) Request(email, purpose string) (int, error) {
	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrEmailNotFound
	}

	code, err := utils.RandomOtpCode()
	if err != nil {
		return 0, err
	}
	codeHash, err := s.auth.HashPassword(code)
	if err != nil {
		return 0, err
	}

	record := &models.OtpCode{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(time.Duration(s.expiryMinutes) * time.Minute),
	}
	if err := s.otps.Replace(record); err != nil {
		return 0, err
	}

	if err := s.emails.SendOtpEmail(email, code, purpose, s.expiryMinutes); err != nil {
		return 0, err
	}

	s.logger.Info().Str("email", email).Str("type", purpose).
		Int("expires_in_minutes", s.expiryMinutes).Msg("otp issued")
	return s.expiryMinutes, nil
}

// consume runs the shared single-use check: latest code for the pair,
// lazy expiry purge, hash compare, delete on success.
func (s *otpService) consume(email, otp, purpose string) error {
	record, err := s.otps.GetLatest(email, purpose)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrOtpInvalid
	}
	if time.Now().After(record.ExpiresAt) {
		if err := s.otps.Delete(record.ID); err != nil {
			return err
		}
		return ErrOtpInvalid
	}
	if !s.auth.ComparePassword(otp, record.CodeHash) {
		return ErrOtpInvalid
	}
	return s.otps.Delete(record.ID)
}

func (s *otpService) Verify(email, otp, purpose string) error {
	if err := s.consume(email, otp, purpose); err != nil {
		return err
	}
	if purpose == models.OtpPurposeEmail {
		if err := s.users.MarkEmailVerified(email); err != nil {
			return err
		}
	}
	s.logger.Info().Str("email", email).Str("type", purpose).Msg("otp verified")
	return nil
}

func (s *otpService) VerifyForReset(email, otp, newPassword string) error {
	if err := s.consume(email, otp, models.OtpPurposePassword); err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// single statement: new hash and token_version bump together, every
	// existing session dies with the old password
	if err := s.users.ResetPassword(email, hash); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Msg("password reset")
	return nil
}
