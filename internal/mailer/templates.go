package mailer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dtroode/campusmarket-server/internal/model"
)

// VerificationMessage builds the signup verification mail.
func VerificationMessage(to, code string) model.MailMessage {
	return model.MailMessage{
		To:      to,
		Subject: "Your verification code",
		Body:    fmt.Sprintf("Your code is: %s", code),
	}
}

// PasswordResetMessage builds the password reset mail linking to the frontend.
func PasswordResetMessage(to, frontendURL, token string) model.MailMessage {
	link := strings.TrimRight(frontendURL, "/") + "/reset-password?code=" + url.QueryEscape(token)
	return model.MailMessage{
		To:      to,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Click the link to reset your password: %s\n\nThe link is valid for 15 minutes.", link),
	}
}
