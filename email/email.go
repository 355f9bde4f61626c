package email

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"

	"github.com/devconfhq/mailroom"
)

// Service composes the outbound emails with hermes and hands the rendered
// HTML to the injected transport. The base URL is used to build the absolute
// confirm and unsubscribe links embedded in every email.
type Service struct {
	config  *mailroom.Config
	baseURL string
	sender  mailroom.Sender
}

// NewService returns an email service that renders with the configured
// product identity and delivers through the given sender.
func NewService(config *mailroom.Config, baseURL string, sender mailroom.Sender) *Service {
	return &Service{
		config:  config,
		baseURL: baseURL,
		sender:  sender,
	}
}

// SendConfirmationEmail sends the double-opt-in confirmation link.
func (s *Service) SendConfirmationEmail(to, confirmationToken, unsubscribeToken string) error {
	body := hermes.Body{
		Intros: []string{
			fmt.Sprintf("Welcome to %s", s.config.Mail.Product.Name),
			"Please confirm your email address to start receiving our newsletter.",
		},
		Actions: []hermes.Action{
			{
				Button: hermes.Button{
					Color: "#22BC66",
					Text:  "Confirm your subscription",
					Link:  s.confirmLink(to, confirmationToken),
				},
			},
		},
		Outros: []string{
			"This link expires in 48 hours. If it was not you who subscribed, you can safely ignore this email.",
		},
	}
	s.addUnsubscribeFooter(&body, unsubscribeToken)

	htmlBody, err := s.render(body)
	if err != nil {
		return err
	}

	_, err = s.sender.Send(to, "Confirm your subscription", htmlBody)
	return err
}

// SendWelcomeEmail sends the one-time welcome after a successful confirmation.
func (s *Service) SendWelcomeEmail(to, unsubscribeToken string) error {
	body := hermes.Body{
		Intros: []string{
			fmt.Sprintf("Thank you for subscribing to %s", s.config.Mail.Product.Name),
			"You will receive schedule announcements, speaker news and ticket updates in your inbox.",
		},
	}
	s.addUnsubscribeFooter(&body, unsubscribeToken)

	htmlBody, err := s.render(body)
	if err != nil {
		return err
	}

	_, err = s.sender.Send(to, "Thank you for subscribing", htmlBody)
	return err
}

// SendNewsletterEmail sends one issue to one recipient. The operator's
// content is split into paragraphs on blank lines; the footer always carries
// that recipient's own unsubscribe link.
func (s *Service) SendNewsletterEmail(to, subject, content, unsubscribeToken string) error {
	body := hermes.Body{
		Intros: splitParagraphs(content),
	}
	s.addUnsubscribeFooter(&body, unsubscribeToken)

	htmlBody, err := s.render(body)
	if err != nil {
		return err
	}

	_, err = s.sender.Send(to, subject, htmlBody)
	return err
}

func (s *Service) render(body hermes.Body) (string, error) {
	h := hermes.Hermes{
		Product: hermes.Product{
			Name: s.config.Mail.Product.Name,
			Link: s.baseURL,
		},
	}

	htmlBody, err := h.GenerateHTML(hermes.Email{Body: body})
	if err != nil {
		return "", errors.Wrap(err, "failed to generate HTML email")
	}

	return htmlBody, nil
}

// addUnsubscribeFooter appends the one-click unsubscribe link. Pending
// subscribers may not have a token yet; they have no standing subscription to
// opt out of, so the footer is simply omitted.
func (s *Service) addUnsubscribeFooter(body *hermes.Body, unsubscribeToken string) {
	if unsubscribeToken == "" {
		return
	}

	body.Outros = append(body.Outros,
		fmt.Sprintf("To stop receiving these emails, unsubscribe here: %s", s.unsubscribeLink(unsubscribeToken)))
}

func (s *Service) confirmLink(email, confirmationToken string) string {
	return fmt.Sprintf("%s/newsletter/confirm?email=%s&token=%s",
		s.baseURL, url.QueryEscape(email), confirmationToken)
}

func (s *Service) unsubscribeLink(unsubscribeToken string) string {
	return fmt.Sprintf("%s/newsletter/unsubscribe?token=%s", s.baseURL, unsubscribeToken)
}

func splitParagraphs(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	var paragraphs []string
	for _, p := range strings.Split(normalized, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	return paragraphs
}
