package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"authgate/internal/models"
)

type EmailService interface {
	SendOtpEmail(email, code, purpose string, expiresInMinutes int) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendOtpEmail(email, code, purpose string, expiresInMinutes int) error {
	subject := "Your password reset code"
	if purpose == models.OtpPurposeEmail {
		subject = "Your email verification code"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", fmt.Sprintf("Your OTP code is %s. It expires in %d minutes.", code, expiresInMinutes))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}
