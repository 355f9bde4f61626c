package mailroom

import "time"

// Subscriber states
const (
	StatePending      = "pending"
	StateActive       = "active"
	StateUnsubscribed = "unsubscribed"
)

// Subscriber represents one row of the newsletter list, keyed by the
// lower-cased email address.
type Subscriber struct {
	ID                int    `storm:"id,increment"`
	Email             string `storm:"unique"`
	SubscribedAt      time.Time
	Confirmed         bool   `storm:"index"`
	ConfirmationToken string `storm:"index"`
	TokenExpiresAt    time.Time
	ConfirmedAt       time.Time
	UnsubscribeToken  string `storm:"index"`
	Unsubscribed      bool   `storm:"index"`
	UnsubscribedAt    time.Time
	IPAddress         string
	UserAgent         string
}

// State reports which of the three lifecycle states the subscriber is in.
// Unsubscribed wins over the others: it is terminal.
func (s *Subscriber) State() string {
	switch {
	case s.Unsubscribed:
		return StateUnsubscribed
	case s.Confirmed:
		return StateActive
	default:
		return StatePending
	}
}

// SubscriberService is the interface that wraps the queries issued against the
// subscriber store. Find methods return (nil, nil) when no row matches.
type SubscriberService interface {
	FindByEmail(email string) (*Subscriber, error)
	FindByUnsubscribeToken(token string) (*Subscriber, error)
	FindActive() ([]Subscriber, error)
	Insert(s *Subscriber) error
	Confirm(email string, confirmedAt time.Time, unsubscribeToken string) error
	RotateConfirmationToken(email, token string, expiresAt time.Time) error
	Unsubscribe(email string, at time.Time) error
}
