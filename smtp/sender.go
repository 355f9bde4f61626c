package smtp

import (
	"fmt"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"gopkg.in/gomail.v2"

	"github.com/devconfhq/mailroom"
)

// Sender delivers rendered emails over plain SMTP.
type Sender struct {
	config *mailroom.Config
}

// NewSender returns an SMTP-backed sender.
func NewSender(config *mailroom.Config) *Sender {
	return &Sender{config: config}
}

// Send delivers one email and returns its Message-ID.
func (s *Sender) Send(to, subject, htmlBody string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewV4().String(), s.config.Mail.SMTP.Host)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Mail.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.config.Mail.SMTP.Host, s.config.Mail.SMTP.Port, s.config.Mail.SMTP.Username, s.config.Mail.SMTP.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", errors.Errorf("failed to send mail to %s: %v", to, err)
	}

	return messageID, nil
}
