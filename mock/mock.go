package mock

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/devconfhq/mailroom"
)

// SubscriberService mocks the subscriber store.
type SubscriberService struct {
	mock.Mock
}

func (m *SubscriberService) FindByEmail(email string) (*mailroom.Subscriber, error) {
	args := m.Called(email)
	sub, _ := args.Get(0).(*mailroom.Subscriber)
	return sub, args.Error(1)
}

func (m *SubscriberService) FindByUnsubscribeToken(token string) (*mailroom.Subscriber, error) {
	args := m.Called(token)
	sub, _ := args.Get(0).(*mailroom.Subscriber)
	return sub, args.Error(1)
}

func (m *SubscriberService) FindActive() ([]mailroom.Subscriber, error) {
	args := m.Called()
	subs, _ := args.Get(0).([]mailroom.Subscriber)
	return subs, args.Error(1)
}

func (m *SubscriberService) Insert(s *mailroom.Subscriber) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *SubscriberService) Confirm(email string, confirmedAt time.Time, unsubscribeToken string) error {
	args := m.Called(email, confirmedAt, unsubscribeToken)
	return args.Error(0)
}

func (m *SubscriberService) RotateConfirmationToken(email, token string, expiresAt time.Time) error {
	args := m.Called(email, token, expiresAt)
	return args.Error(0)
}

func (m *SubscriberService) Unsubscribe(email string, at time.Time) error {
	args := m.Called(email, at)
	return args.Error(0)
}

// EmailService mocks email composition and dispatch.
type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendConfirmationEmail(to, confirmationToken, unsubscribeToken string) error {
	args := m.Called(to, confirmationToken, unsubscribeToken)
	return args.Error(0)
}

func (m *EmailService) SendWelcomeEmail(to, unsubscribeToken string) error {
	args := m.Called(to, unsubscribeToken)
	return args.Error(0)
}

func (m *EmailService) SendNewsletterEmail(to, subject, content, unsubscribeToken string) error {
	args := m.Called(to, subject, content, unsubscribeToken)
	return args.Error(0)
}

// Sender mocks the email transport.
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(to, subject, htmlBody string) (string, error) {
	args := m.Called(to, subject, htmlBody)
	return args.String(0), args.Error(1)
}

// SubscriptionService mocks the subscription state machine.
type SubscriptionService struct {
	mock.Mock
}

func (m *SubscriptionService) Subscribe(req *mailroom.SubscribeRequest) (*mailroom.SubscribeResult, error) {
	args := m.Called(req)
	result, _ := args.Get(0).(*mailroom.SubscribeResult)
	return result, args.Error(1)
}

func (m *SubscriptionService) Confirm(email, token string) (*mailroom.ConfirmResult, error) {
	args := m.Called(email, token)
	result, _ := args.Get(0).(*mailroom.ConfirmResult)
	return result, args.Error(1)
}

func (m *SubscriptionService) ResendConfirmation(email string) (*mailroom.ResendResult, error) {
	args := m.Called(email)
	result, _ := args.Get(0).(*mailroom.ResendResult)
	return result, args.Error(1)
}

func (m *SubscriptionService) UnsubscribeByToken(token string) (*mailroom.UnsubscribeResult, error) {
	args := m.Called(token)
	result, _ := args.Get(0).(*mailroom.UnsubscribeResult)
	return result, args.Error(1)
}

func (m *SubscriptionService) UnsubscribeByEmail(email string) (*mailroom.UnsubscribeResult, error) {
	args := m.Called(email)
	result, _ := args.Get(0).(*mailroom.UnsubscribeResult)
	return result, args.Error(1)
}

// NewsletterService mocks batch newsletter dispatch.
type NewsletterService struct {
	mock.Mock
}

func (m *NewsletterService) SendTest(subject, content, recipient string) (*mailroom.BatchResult, error) {
	args := m.Called(subject, content, recipient)
	result, _ := args.Get(0).(*mailroom.BatchResult)
	return result, args.Error(1)
}

func (m *NewsletterService) SendToAll(subject, content string) (*mailroom.BatchResult, error) {
	args := m.Called(subject, content)
	result, _ := args.Get(0).(*mailroom.BatchResult)
	return result, args.Error(1)
}
