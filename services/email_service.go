package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	mail "gopkg.in/mail.v2"
)

// EmailService sends transactional mail (currently only password resets).
// Plain SMTP wrapper; failures are surfaced to the caller, never retried
// here.
type EmailService struct {
	dialer *mail.Dialer
	from   string
}

// NewEmailService builds the service from SMTP_* environment variables.
func NewEmailService() *EmailService {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &EmailService{
		dialer: mail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD")),
		from:   os.Getenv("SMTP_FROM"),
	}
}

// SendPasswordReset emails the signed reset token to the account address.
func (es *EmailService) SendPasswordReset(to, resetToken string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your PawHome password")
	m.SetBody("text/plain", fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Use this token within 30 minutes: %s\n\n"+
			"If you didn't request this, you can ignore this email.", resetToken))

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset email to %s: %w", to, err)
	}
	log.Printf("Sent password reset email to %s", to)
	return nil
}
