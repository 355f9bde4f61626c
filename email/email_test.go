package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devconfhq/mailroom"
	mocksvc "github.com/devconfhq/mailroom/mock"
)

const baseURL = "https://devconf.example.com"

func newTestService() (*Service, *mocksvc.Sender) {
	config := &mailroom.Config{}
	config.Mail.Product.Name = "DevConf Weekly"
	config.Mail.From = "news@devconf.example.com"

	sender := new(mocksvc.Sender)
	return NewService(config, baseURL, sender), sender
}

func TestSendConfirmationEmail(t *testing.T) {
	s, sender := newTestService()

	var body string
	sender.On("Send", "a+b@example.com", "Confirm your subscription", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return("msg-id", nil)

	require.NoError(t, s.SendConfirmationEmail("a+b@example.com", "confirm-tok", ""))

	// The & between query params may be entity-escaped in the rendered HTML,
	// so check the link in two pieces.
	assert.Contains(t, body, baseURL+"/newsletter/confirm?email=a%2Bb%40example.com")
	assert.Contains(t, body, "token=confirm-tok")
	assert.Contains(t, body, "DevConf Weekly")
	// No unsubscribe footer before a token exists.
	assert.NotContains(t, body, "/newsletter/unsubscribe")
}

func TestSendConfirmationEmailWithUnsubscribeToken(t *testing.T) {
	s, sender := newTestService()

	var body string
	sender.On("Send", "a@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return("msg-id", nil)

	require.NoError(t, s.SendConfirmationEmail("a@example.com", "confirm-tok", "unsub-tok"))

	assert.Contains(t, body, baseURL+"/newsletter/unsubscribe?token=unsub-tok")
}

func TestSendWelcomeEmail(t *testing.T) {
	s, sender := newTestService()

	var body string
	sender.On("Send", "a@example.com", "Thank you for subscribing", mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return("msg-id", nil)

	require.NoError(t, s.SendWelcomeEmail("a@example.com", "unsub-tok"))

	assert.Contains(t, body, "Thank you for subscribing to DevConf Weekly")
	assert.Contains(t, body, baseURL+"/newsletter/unsubscribe?token=unsub-tok")
}

func TestSendNewsletterEmail(t *testing.T) {
	s, sender := newTestService()

	var body string
	sender.On("Send", "a@example.com", "Schedule is live", mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return("msg-id", nil)

	content := "The schedule is out.\r\n\r\nEarly-bird tickets end Friday.\n\n\nSee you in October."
	require.NoError(t, s.SendNewsletterEmail("a@example.com", "Schedule is live", content, "unsub-tok"))

	assert.Contains(t, body, "The schedule is out.")
	assert.Contains(t, body, "Early-bird tickets end Friday.")
	assert.Contains(t, body, "See you in October.")
	assert.Contains(t, body, baseURL+"/newsletter/unsubscribe?token=unsub-tok")
}

func TestSendNewsletterEmailSenderFailure(t *testing.T) {
	s, sender := newTestService()

	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)

	err := s.SendNewsletterEmail("a@example.com", "Subject", "Body", "unsub-tok")
	assert.Error(t, err)
}

func TestSplitParagraphs(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, splitParagraphs("one\n\ntwo"))
	assert.Equal(t, []string{"one", "two"}, splitParagraphs("one\r\n\r\ntwo\n\n"))
	assert.Nil(t, splitParagraphs("   \n\n "))
}
