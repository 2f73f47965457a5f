// Package notification contains the outbound email dispatching used by the
// booking flows. Delivery is always best-effort, callers log failures and
// never propagate them.
package notification

import (
	"fmt"

	"clinic-booking/internal/configs"

	"github.com/go-gomail/gomail"
)

// Sender determines the method used to dispatch a notification to a recipient.
type Sender interface {

	// Send delivers an HTML message to the given recipient.
	Send(to string, subject string, htmlBody string) error
}

type smtpSender struct {
	config configs.Config
}

// NewSMTPSender creates a Sender that delivers messages through the configured
// SMTP server.
func NewSMTPSender(config configs.Config) Sender {
	return &smtpSender{config: config}
}

func (s *smtpSender) Send(to string, subject string, htmlBody string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", s.config.SMTPSender())
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(s.config.SMTPHost(), s.config.SMTPPort(), s.config.SMTPUsername(), s.config.SMTPPassword())
	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("could not deliver the message: %w", err)
	}
	return nil
}
