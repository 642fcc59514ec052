package mailer

import (
	"fmt"

	"github.com/amorim-studio/salon-bookings/pkg/logger"
)

// DevMailer prints emails to the logs instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("📧 [DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
	)

	fmt.Printf("\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"📧 EMAIL (DEV MODE)\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
		"To: %s (%s)\n"+
		"Subject: %s\n"+
		"\n"+
		"%s\n"+
		"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
		toEmail, toName, subject, text)

	return "dev", nil
}

// New picks a mailer implementation: dev mode prints to logs, a MailerSend
// key selects the hosted API, otherwise plain SMTP.
func New(devMode bool, apiKey, fromName, fromEmail, smtpHost string, smtpPort int, smtpFrom, smtpUser, smtpPass string, smtpTLS bool) Service {
	if devMode {
		return NewDevMailer()
	}
	if apiKey != "" {
		return NewMailer(apiKey, fromName, fromEmail)
	}
	return NewSMTPMailer(smtpHost, smtpPort, smtpFrom, smtpUser, smtpPass, smtpTLS)
}
