package mailjet

import (
	mailjet "github.com/mailjet/mailjet-apiv3-go"
	"github.com/pkg/errors"

	"github.com/devconfhq/mailroom"
)

// Sender delivers rendered emails through the Mailjet v3 API.
type Sender struct {
	client *mailjet.Client
	config *mailroom.Config
}

// NewSender returns a Mailjet-backed sender.
func NewSender(config *mailroom.Config) *Sender {
	return &Sender{
		client: mailjet.NewMailjetClient(config.Mail.Mailjet.APIKey, config.Mail.Mailjet.SecretKey),
		config: config,
	}
}

// Send delivers one email and returns the provider's message UUID.
func (s *Sender) Send(to, subject, htmlBody string) (string, error) {
	info := []mailjet.InfoMessagesV31{{
		From: &mailjet.RecipientV31{
			Email: s.config.Mail.From,
			Name:  s.config.Mail.Product.Name,
		},
		To: &mailjet.RecipientsV31{
			mailjet.RecipientV31{Email: to},
		},
		Subject:  subject,
		HTMLPart: htmlBody,
	}}

	msgs := mailjet.MessagesV31{Info: info}
	res, err := s.client.SendMailV31(&msgs)
	if err != nil {
		return "", errors.Wrapf(err, "could not send mail to %s", to)
	}

	if len(res.ResultsV31) > 0 && len(res.ResultsV31[0].To) > 0 {
		return res.ResultsV31[0].To[0].MessageUUID, nil
	}

	return "", nil
}
