package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/devconfhq/mailroom"
	"github.com/devconfhq/mailroom/pkg/token"
)

const (
	confirmationSentMessage  = "A confirmation email has been sent to %s. Click the link in the email to activate your subscription. Check your spam folder if you don't see it within a couple of minutes."
	alreadySubscribedMessage = "This address is already on the list. Check your inbox for the confirmation email, or request a new one."
	alreadyConfirmedMessage  = "Your subscription is already confirmed. No further action is needed."
	notSubscribedMessage     = "This address is not on the list yet. Subscribe first to receive a confirmation email."
	invalidLinkMessage       = "This link is invalid or has already been used."
	expiredLinkMessage       = "That confirmation link has expired. Request a new one to finish subscribing."
	unsubscribedMessage      = "You have been unsubscribed. Sorry to see you go."
	removedIfPresentMessage  = "If you were subscribed, you have been removed from the list."
	dispatchFailedMessage    = "We could not send the confirmation email. Please try again later."
	invalidEmailMessage      = "Please provide a valid email address."
)

// Service drives a subscriber through pending, active and unsubscribed.
// Transitions are idempotent by construction rather than guarded by row
// locks: repeating a confirm or unsubscribe is harmless, so concurrent
// duplicate requests need no coordination beyond the store's row atomicity.
type Service struct {
	store  mailroom.SubscriberService
	email  mailroom.EmailService
	logger zerolog.Logger
}

// NewService returns a subscription service backed by the given store and
// email dispatcher.
func NewService(store mailroom.SubscriberService, email mailroom.EmailService, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		email:  email,
		logger: logger,
	}
}

// Subscribe validates the address, inserts a pending row with a fresh
// confirmation token and sends the confirmation email. The row is inserted
// before the send on purpose: if dispatch fails the operation is reported as
// failed but the row stays, and the owner recovers via resend.
func (s *Service) Subscribe(req *mailroom.SubscribeRequest) (*mailroom.SubscribeResult, error) {
	const op = "subscription.Subscribe"

	email := normalize(req.Email)
	if !mailroom.ValidateEmail(email) {
		return nil, &mailroom.Error{Code: mailroom.ErrInvalid, Message: invalidEmailMessage, Op: op}
	}

	existing, err := s.store.FindByEmail(email)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if existing != nil {
		// Deliberately the same answer for pending, active and unsubscribed
		// rows, so probing callers learn nothing about the sub-state.
		return &mailroom.SubscribeResult{
			Message:           alreadySubscribedMessage,
			AlreadySubscribed: true,
		}, nil
	}

	confirmationToken, err := token.New(token.DefaultLength)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	sub := &mailroom.Subscriber{
		Email:             email,
		SubscribedAt:      time.Now(),
		ConfirmationToken: confirmationToken,
		TokenExpiresAt:    token.ExpiresAt(token.DefaultTTL),
		IPAddress:         req.IPAddress,
		UserAgent:         req.UserAgent,
	}
	if err := s.store.Insert(sub); err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	s.logger.Info().Str("email", email).Msg("sending confirmation email")
	if err := s.email.SendConfirmationEmail(email, confirmationToken, ""); err != nil {
		return nil, &mailroom.Error{Code: mailroom.ErrUnavailable, Message: dispatchFailedMessage, Op: op, Err: err}
	}

	return &mailroom.SubscribeResult{
		Message: fmt.Sprintf(confirmationSentMessage, email),
	}, nil
}

// Confirm flips a pending subscriber to active when the presented token
// matches and has not expired. Confirming an already-active subscriber is an
// idempotent success; no second welcome email is sent.
func (s *Service) Confirm(email, confirmationToken string) (*mailroom.ConfirmResult, error) {
	const op = "subscription.Confirm"

	email = normalize(email)
	sub, err := s.store.FindByEmail(email)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if sub == nil {
		return nil, &mailroom.Error{Code: mailroom.ErrInvalid, Message: invalidLinkMessage, Op: op}
	}

	if sub.Confirmed {
		return &mailroom.ConfirmResult{Email: email, AlreadyConfirmed: true}, nil
	}

	if sub.ConfirmationToken == "" || sub.ConfirmationToken != confirmationToken {
		return nil, &mailroom.Error{Code: mailroom.ErrInvalid, Message: invalidLinkMessage, Op: op}
	}

	if token.Expired(sub.TokenExpiresAt) {
		return nil, &mailroom.Error{Code: mailroom.ErrExpired, Message: expiredLinkMessage, Op: op}
	}

	// The unsubscribe token is issued lazily here and never rotated again:
	// every outbound email from now on embeds this same token.
	unsubscribeToken := sub.UnsubscribeToken
	if unsubscribeToken == "" {
		unsubscribeToken, err = token.New(token.DefaultLength)
		if err != nil {
			return nil, &mailroom.Error{Op: op, Err: err}
		}
	}

	if err := s.store.Confirm(email, time.Now(), unsubscribeToken); err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	// Best effort: a lost welcome email must not undo the confirmation.
	if err := s.email.SendWelcomeEmail(email, unsubscribeToken); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to send welcome email")
		sentry.CaptureException(err)
	}

	return &mailroom.ConfirmResult{Email: email}, nil
}

// ResendConfirmation rotates the confirmation token and expiry of a pending
// subscriber and sends a fresh confirmation email. Active subscribers get an
// informational already-confirmed answer.
func (s *Service) ResendConfirmation(email string) (*mailroom.ResendResult, error) {
	const op = "subscription.ResendConfirmation"

	email = normalize(email)
	sub, err := s.store.FindByEmail(email)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if sub == nil {
		return nil, &mailroom.Error{Code: mailroom.ErrNotFound, Message: notSubscribedMessage, Op: op}
	}

	if sub.Confirmed {
		return &mailroom.ResendResult{
			Message:          alreadyConfirmedMessage,
			AlreadyConfirmed: true,
		}, nil
	}

	confirmationToken, err := token.New(token.DefaultLength)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	if err := s.store.RotateConfirmationToken(email, confirmationToken, token.ExpiresAt(token.DefaultTTL)); err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	// The unsubscribe token may still be empty for a pending subscriber;
	// the composer drops the footer in that case.
	if err := s.email.SendConfirmationEmail(email, confirmationToken, sub.UnsubscribeToken); err != nil {
		return nil, &mailroom.Error{Code: mailroom.ErrUnavailable, Message: dispatchFailedMessage, Op: op, Err: err}
	}

	return &mailroom.ResendResult{
		Message: fmt.Sprintf(confirmationSentMessage, email),
	}, nil
}

// UnsubscribeByToken handles the one-click unsubscribe link embedded in every
// outbound email.
func (s *Service) UnsubscribeByToken(unsubscribeToken string) (*mailroom.UnsubscribeResult, error) {
	const op = "subscription.UnsubscribeByToken"

	if unsubscribeToken == "" {
		return nil, &mailroom.Error{Code: mailroom.ErrInvalid, Message: invalidLinkMessage, Op: op}
	}

	sub, err := s.store.FindByUnsubscribeToken(unsubscribeToken)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if sub == nil {
		return nil, &mailroom.Error{Code: mailroom.ErrInvalid, Message: invalidLinkMessage, Op: op}
	}

	return s.unsubscribe(op, sub, unsubscribedMessage)
}

// UnsubscribeByEmail removes an address from the list. Unknown addresses get
// the same generic answer as known ones so the endpoint cannot be used to
// enumerate subscribers.
func (s *Service) UnsubscribeByEmail(email string) (*mailroom.UnsubscribeResult, error) {
	const op = "subscription.UnsubscribeByEmail"

	email = normalize(email)
	sub, err := s.store.FindByEmail(email)
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if sub == nil {
		return &mailroom.UnsubscribeResult{Message: removedIfPresentMessage}, nil
	}

	return s.unsubscribe(op, sub, removedIfPresentMessage)
}

func (s *Service) unsubscribe(op string, sub *mailroom.Subscriber, message string) (*mailroom.UnsubscribeResult, error) {
	if sub.Unsubscribed {
		return &mailroom.UnsubscribeResult{
			Message:             message,
			AlreadyUnsubscribed: true,
		}, nil
	}

	if err := s.store.Unsubscribe(sub.Email, time.Now()); err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}

	return &mailroom.UnsubscribeResult{Message: message}, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
