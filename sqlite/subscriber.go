package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/devconfhq/mailroom"
)

const subscriberColumns = `id, email, subscribed_at, confirmed, confirmation_token,
	token_expires_at, confirmed_at, unsubscribe_token, unsubscribed, unsubscribed_at,
	ip_address, user_agent`

type subscriberService struct {
	db *DB
}

// NewSubscriberService returns a subscriber store backed by sqlite.
func NewSubscriberService(db *DB) mailroom.SubscriberService {
	return &subscriberService{
		db: db,
	}
}

// FindByEmail finds a subscriber by its normalized email.
func (ss *subscriberService) FindByEmail(email string) (*mailroom.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE email = ?`, email)

	s, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find by email %s: %w", email, err)
	}

	return s, nil
}

// FindByUnsubscribeToken finds a subscriber by its unsubscribe token.
func (ss *subscriberService) FindByUnsubscribeToken(token string) (*mailroom.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		`SELECT `+subscriberColumns+` FROM newsletter_subscribers WHERE unsubscribe_token = ?`, token)

	s, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find by unsubscribe token: %w", err)
	}

	return s, nil
}

// FindActive returns every confirmed, not-unsubscribed subscriber.
func (ss *subscriberService) FindActive() ([]mailroom.Subscriber, error) {
	rows, err := ss.db.sqlDB.Query(
		`SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE confirmed = 1 AND unsubscribed = 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to find active subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []mailroom.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		subscribers = append(subscribers, *s)
	}

	return subscribers, rows.Err()
}

// Insert inserts a new pending subscriber.
func (ss *subscriberService) Insert(s *mailroom.Subscriber) error {
	res, err := ss.db.sqlDB.Exec(
		`INSERT INTO newsletter_subscribers (email, subscribed_at, confirmed, confirmation_token,
			token_expires_at, unsubscribe_token, unsubscribed, ip_address, user_agent)
		VALUES (?, ?, 0, ?, ?, NULLIF(?, ''), 0, NULLIF(?, ''), NULLIF(?, ''))`,
		s.Email, s.SubscribedAt, s.ConfirmationToken, s.TokenExpiresAt,
		s.UnsubscribeToken, s.IPAddress, s.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		s.ID = int(id)
	}

	return nil
}

// Confirm marks a subscriber as confirmed, clears the confirmation token and
// stores the unsubscribe token in the same update.
func (ss *subscriberService) Confirm(email string, confirmedAt time.Time, unsubscribeToken string) error {
	_, err := ss.db.sqlDB.Exec(
		`UPDATE newsletter_subscribers
		SET confirmed = 1, confirmed_at = ?, confirmation_token = NULL, token_expires_at = NULL,
			unsubscribe_token = ?
		WHERE email = ?`,
		confirmedAt, unsubscribeToken, email)
	if err != nil {
		return fmt.Errorf("failed to confirm: %w", err)
	}

	return nil
}

// RotateConfirmationToken replaces the confirmation token and its expiry,
// leaving every other column untouched.
func (ss *subscriberService) RotateConfirmationToken(email, token string, expiresAt time.Time) error {
	_, err := ss.db.sqlDB.Exec(
		`UPDATE newsletter_subscribers SET confirmation_token = ?, token_expires_at = ? WHERE email = ?`,
		token, expiresAt, email)
	if err != nil {
		return fmt.Errorf("failed to rotate confirmation token: %w", err)
	}

	return nil
}

// Unsubscribe marks a subscriber as unsubscribed.
func (ss *subscriberService) Unsubscribe(email string, at time.Time) error {
	_, err := ss.db.sqlDB.Exec(
		`UPDATE newsletter_subscribers SET unsubscribed = 1, unsubscribed_at = ? WHERE email = ?`,
		at, email)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscriber(row scanner) (*mailroom.Subscriber, error) {
	var (
		s                 mailroom.Subscriber
		confirmationToken sql.NullString
		tokenExpiresAt    sql.NullTime
		confirmedAt       sql.NullTime
		unsubscribeToken  sql.NullString
		unsubscribedAt    sql.NullTime
		ipAddress         sql.NullString
		userAgent         sql.NullString
	)

	if err := row.Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.Confirmed, &confirmationToken,
		&tokenExpiresAt, &confirmedAt, &unsubscribeToken, &s.Unsubscribed, &unsubscribedAt,
		&ipAddress, &userAgent); err != nil {
		return nil, err
	}

	s.ConfirmationToken = confirmationToken.String
	s.TokenExpiresAt = tokenExpiresAt.Time
	s.ConfirmedAt = confirmedAt.Time
	s.UnsubscribeToken = unsubscribeToken.String
	s.UnsubscribedAt = unsubscribedAt.Time
	s.IPAddress = ipAddress.String
	s.UserAgent = userAgent.String

	return &s, nil
}
