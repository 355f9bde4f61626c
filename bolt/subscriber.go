package bolt

import (
	stderrors "errors"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/go-errors/errors"

	"github.com/devconfhq/mailroom"
)

type subscriberService struct {
	db *DB
}

// NewSubscriberService returns a subscriber store backed by storm.
func NewSubscriberService(db *DB) mailroom.SubscriberService {
	return &subscriberService{
		db: db,
	}
}

// FindByEmail finds a subscriber by its normalized email.
func (ss *subscriberService) FindByEmail(email string) (*mailroom.Subscriber, error) {
	var s mailroom.Subscriber
	if err := ss.db.stormDB.One("Email", email, &s); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find by email: %v", err)
	}

	return &s, nil
}

// FindByUnsubscribeToken finds a subscriber by its unsubscribe token.
func (ss *subscriberService) FindByUnsubscribeToken(token string) (*mailroom.Subscriber, error) {
	var s mailroom.Subscriber
	if err := ss.db.stormDB.One("UnsubscribeToken", token, &s); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find by unsubscribe token: %v", err)
	}

	return &s, nil
}

// FindActive returns every confirmed, not-unsubscribed subscriber.
func (ss *subscriberService) FindActive() ([]mailroom.Subscriber, error) {
	var subscribers []mailroom.Subscriber
	query := ss.db.stormDB.Select(q.And(
		q.Eq("Confirmed", true),
		q.Eq("Unsubscribed", false),
	))
	if err := query.Find(&subscribers); err != nil {
		if stderrors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find active subscribers: %v", err)
	}

	return subscribers, nil
}

// Insert inserts a new pending subscriber.
func (ss *subscriberService) Insert(s *mailroom.Subscriber) error {
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// Confirm marks a subscriber as confirmed, clears the confirmation token and
// stores the unsubscribe token in the same update.
func (ss *subscriberService) Confirm(email string, confirmedAt time.Time, unsubscribeToken string) error {
	s, err := ss.FindByEmail(email)
	if err != nil {
		return err
	}
	if s == nil {
		return storm.ErrNotFound
	}

	s.Confirmed = true
	s.ConfirmedAt = confirmedAt
	s.ConfirmationToken = ""
	s.TokenExpiresAt = time.Time{}
	s.UnsubscribeToken = unsubscribeToken
	// Save rather than Update: Update skips zero values and would leave the
	// cleared token fields behind.
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// RotateConfirmationToken replaces the confirmation token and its expiry,
// leaving every other field untouched.
func (ss *subscriberService) RotateConfirmationToken(email, token string, expiresAt time.Time) error {
	s, err := ss.FindByEmail(email)
	if err != nil {
		return err
	}
	if s == nil {
		return storm.ErrNotFound
	}

	s.ConfirmationToken = token
	s.TokenExpiresAt = expiresAt
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// Unsubscribe marks a subscriber as unsubscribed.
func (ss *subscriberService) Unsubscribe(email string, at time.Time) error {
	s, err := ss.FindByEmail(email)
	if err != nil {
		return err
	}
	if s == nil {
		return storm.ErrNotFound
	}

	s.Unsubscribed = true
	s.UnsubscribedAt = at
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}
