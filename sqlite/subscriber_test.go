package sqlite

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devconfhq/mailroom"
)

func newTestStore(t *testing.T) mailroom.SubscriberService {
	t.Helper()

	// A named in-memory database per test: the sql pool may open more than
	// one connection, and they all need to see the same data.
	db := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, db.Open())
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewSubscriberService(db)
}

func pendingSubscriber(email string) *mailroom.Subscriber {
	return &mailroom.Subscriber{
		Email:             email,
		SubscribedAt:      time.Now(),
		ConfirmationToken: "confirm-" + email,
		TokenExpiresAt:    time.Now().Add(48 * time.Hour),
		IPAddress:         "203.0.113.7",
		UserAgent:         "curl/8.0",
	}
}

func TestInsertAndFindByEmail(t *testing.T) {
	store := newTestStore(t)

	sub := pendingSubscriber("a@example.com")
	require.NoError(t, store.Insert(sub))
	assert.NotZero(t, sub.ID)

	found, err := store.FindByEmail("a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a@example.com", found.Email)
	assert.Equal(t, "confirm-a@example.com", found.ConfirmationToken)
	assert.False(t, found.Confirmed)
	assert.False(t, found.Unsubscribed)
	assert.Empty(t, found.UnsubscribeToken)
	assert.Equal(t, "203.0.113.7", found.IPAddress)
	assert.Equal(t, mailroom.StatePending, found.State())

	missing, err := store.FindByEmail("ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertDuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Insert(pendingSubscriber("a@example.com")))
	assert.Error(t, store.Insert(pendingSubscriber("a@example.com")))
}

func TestConfirm(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Insert(pendingSubscriber("a@example.com")))

	confirmedAt := time.Now()
	require.NoError(t, store.Confirm("a@example.com", confirmedAt, "unsub-tok"))

	found, err := store.FindByEmail("a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Confirmed)
	assert.Empty(t, found.ConfirmationToken)
	assert.True(t, found.TokenExpiresAt.IsZero())
	assert.WithinDuration(t, confirmedAt, found.ConfirmedAt, time.Second)
	assert.Equal(t, "unsub-tok", found.UnsubscribeToken)
	assert.Equal(t, mailroom.StateActive, found.State())
}

func TestRotateConfirmationToken(t *testing.T) {
	store := newTestStore(t)

	sub := pendingSubscriber("a@example.com")
	require.NoError(t, store.Insert(sub))

	expiresAt := time.Now().Add(48 * time.Hour)
	require.NoError(t, store.RotateConfirmationToken("a@example.com", "fresh-tok", expiresAt))

	found, err := store.FindByEmail("a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "fresh-tok", found.ConfirmationToken)
	assert.WithinDuration(t, expiresAt, found.TokenExpiresAt, time.Second)
	// Everything else stays put.
	assert.False(t, found.Confirmed)
	assert.WithinDuration(t, sub.SubscribedAt, found.SubscribedAt, time.Second)
}

func TestUnsubscribe(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Insert(pendingSubscriber("a@example.com")))
	require.NoError(t, store.Confirm("a@example.com", time.Now(), "unsub-tok"))

	at := time.Now()
	require.NoError(t, store.Unsubscribe("a@example.com", at))

	found, err := store.FindByUnsubscribeToken("unsub-tok")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.Unsubscribed)
	assert.WithinDuration(t, at, found.UnsubscribedAt, time.Second)
	assert.Equal(t, mailroom.StateUnsubscribed, found.State())

	missing, err := store.FindByUnsubscribeToken("wrong-tok")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindActive(t *testing.T) {
	store := newTestStore(t)

	// pending
	require.NoError(t, store.Insert(pendingSubscriber("pending@example.com")))
	// active
	require.NoError(t, store.Insert(pendingSubscriber("active@example.com")))
	require.NoError(t, store.Confirm("active@example.com", time.Now(), "unsub-active"))
	// confirmed then unsubscribed: must never appear among recipients
	require.NoError(t, store.Insert(pendingSubscriber("gone@example.com")))
	require.NoError(t, store.Confirm("gone@example.com", time.Now(), "unsub-gone"))
	require.NoError(t, store.Unsubscribe("gone@example.com", time.Now()))

	active, err := store.FindActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active@example.com", active[0].Email)
}
