package subscription

import (
	"github.com/rs/zerolog"

	"github.com/devconfhq/mailroom"
)

const (
	noRecipientsMessage  = "No active subscribers found"
	noSubscriberMessage  = "No subscriber found with that address."
	emptySubjectMessage  = "Subject must not be empty."
	emptyContentMessage  = "Content must not be empty."
	testSubjectPrefix   = "[Test] "
	testDispatchFailed  = "The test email could not be delivered."
)

// Dispatcher fans one newsletter out to every active subscriber. A failed
// recipient is recorded and skipped, never retried within the batch: the
// operator re-triggers manually if needed.
type Dispatcher struct {
	store  mailroom.SubscriberService
	email  mailroom.EmailService
	logger zerolog.Logger
}

// NewDispatcher returns a newsletter dispatcher backed by the given store and
// email service.
func NewDispatcher(store mailroom.SubscriberService, email mailroom.EmailService, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		email:  email,
		logger: logger,
	}
}

// SendTest delivers the newsletter to a single existing subscriber with the
// subject marked as a test. Confirmation is not required for test sends.
func (d *Dispatcher) SendTest(subject, content, recipient string) (*mailroom.BatchResult, error) {
	const op = "subscription.SendTest"

	if err := validateNewsletter(op, subject, content); err != nil {
		return nil, err
	}

	sub, err := d.store.FindByEmail(normalize(recipient))
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if sub == nil {
		return nil, &mailroom.Error{Code: mailroom.ErrNotFound, Message: noSubscriberMessage, Op: op}
	}

	if err := d.email.SendNewsletterEmail(sub.Email, testSubjectPrefix+subject, content, sub.UnsubscribeToken); err != nil {
		return nil, &mailroom.Error{Code: mailroom.ErrUnavailable, Message: testDispatchFailed, Op: op, Err: err}
	}

	return &mailroom.BatchResult{Total: 1, Sent: 1, TestMode: true}, nil
}

// SendToAll sends one personalized email per confirmed, not-unsubscribed
// recipient and reports granular counts. Every recipient is attempted; a
// per-recipient failure never aborts the batch.
func (d *Dispatcher) SendToAll(subject, content string) (*mailroom.BatchResult, error) {
	const op = "subscription.SendToAll"

	if err := validateNewsletter(op, subject, content); err != nil {
		return nil, err
	}

	subscribers, err := d.store.FindActive()
	if err != nil {
		return nil, &mailroom.Error{Op: op, Err: err}
	}
	if len(subscribers) == 0 {
		return nil, &mailroom.Error{Code: mailroom.ErrNotFound, Message: noRecipientsMessage, Op: op}
	}

	result := &mailroom.BatchResult{Total: len(subscribers)}
	for _, sub := range subscribers {
		if err := d.email.SendNewsletterEmail(sub.Email, subject, content, sub.UnsubscribeToken); err != nil {
			d.logger.Warn().Err(err).Str("email", sub.Email).Msg("newsletter send failed")
			result.Failed++
			result.Errors = append(result.Errors, mailroom.SendError{
				Email: sub.Email,
				Error: err.Error(),
			})
			continue
		}
		result.Sent++
	}

	d.logger.Info().
		Int("total", result.Total).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("newsletter batch finished")

	return result, nil
}

func validateNewsletter(op, subject, content string) error {
	if subject == "" {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: emptySubjectMessage, Op: op}
	}
	if content == "" {
		return &mailroom.Error{Code: mailroom.ErrInvalid, Message: emptyContentMessage, Op: op}
	}

	return nil
}
