package subscription

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devconfhq/mailroom"
	mocksvc "github.com/devconfhq/mailroom/mock"
)

func newTestDispatcher() (*Dispatcher, *mocksvc.SubscriberService, *mocksvc.EmailService) {
	store := new(mocksvc.SubscriberService)
	email := new(mocksvc.EmailService)
	return NewDispatcher(store, email, zerolog.Nop()), store, email
}

func TestSendToAll(t *testing.T) {
	d, store, email := newTestDispatcher()

	store.On("FindActive").Return([]mailroom.Subscriber{
		{Email: "a@example.com", Confirmed: true, UnsubscribeToken: "tok-a"},
		{Email: "b@example.com", Confirmed: true, UnsubscribeToken: "tok-b"},
	}, nil)
	email.On("SendNewsletterEmail", "a@example.com", "Schedule is live", "See you there.", "tok-a").Return(nil)
	email.On("SendNewsletterEmail", "b@example.com", "Schedule is live", "See you there.", "tok-b").Return(nil)

	result, err := d.SendToAll("Schedule is live", "See you there.")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)

	email.AssertExpectations(t)
}

func TestSendToAllPartialFailure(t *testing.T) {
	d, store, email := newTestDispatcher()

	store.On("FindActive").Return([]mailroom.Subscriber{
		{Email: "a@example.com", Confirmed: true, UnsubscribeToken: "tok-a"},
		{Email: "b@example.com", Confirmed: true, UnsubscribeToken: "tok-b"},
		{Email: "c@example.com", Confirmed: true, UnsubscribeToken: "tok-c"},
	}, nil)
	email.On("SendNewsletterEmail", "a@example.com", mock.Anything, mock.Anything, "tok-a").Return(nil)
	email.On("SendNewsletterEmail", "b@example.com", mock.Anything, mock.Anything, "tok-b").Return(assert.AnError)
	email.On("SendNewsletterEmail", "c@example.com", mock.Anything, mock.Anything, "tok-c").Return(nil)

	result, err := d.SendToAll("Subject", "Body")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "b@example.com", result.Errors[0].Email)
	assert.NotEmpty(t, result.Errors[0].Error)

	// Every recipient was attempted despite the failure in the middle.
	email.AssertNumberOfCalls(t, "SendNewsletterEmail", 3)
}

func TestSendToAllAllFail(t *testing.T) {
	d, store, email := newTestDispatcher()

	store.On("FindActive").Return([]mailroom.Subscriber{
		{Email: "a@example.com", Confirmed: true, UnsubscribeToken: "tok-a"},
	}, nil)
	email.On("SendNewsletterEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	result, err := d.SendToAll("Subject", "Body")
	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, 1, result.Failed)
}

func TestSendToAllNoRecipients(t *testing.T) {
	d, store, email := newTestDispatcher()

	store.On("FindActive").Return(nil, nil)

	_, err := d.SendToAll("Subject", "Body")
	require.Error(t, err)
	assert.Equal(t, mailroom.ErrNotFound, mailroom.ErrorCode(err))
	assert.Equal(t, "No active subscribers found", mailroom.ErrorMessage(err))

	email.AssertNotCalled(t, "SendNewsletterEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendToAllEmptyInput(t *testing.T) {
	d, store, _ := newTestDispatcher()

	for _, tc := range []struct{ subject, content string }{
		{"", "Body"},
		{"Subject", ""},
	} {
		_, err := d.SendToAll(tc.subject, tc.content)
		require.Error(t, err)
		assert.Equal(t, mailroom.ErrInvalid, mailroom.ErrorCode(err))
	}

	store.AssertNotCalled(t, "FindActive")
}

func TestSendTest(t *testing.T) {
	d, store, email := newTestDispatcher()

	// Test sends do not require a confirmed subscriber.
	sub := &mailroom.Subscriber{Email: "op@example.com", UnsubscribeToken: "tok-op"}
	store.On("FindByEmail", "op@example.com").Return(sub, nil)
	email.On("SendNewsletterEmail", "op@example.com", "[Test] Subject", "Body line", "tok-op").Return(nil)

	result, err := d.SendTest("Subject", "Body line", "Op@Example.com")
	require.NoError(t, err)
	assert.True(t, result.TestMode)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Sent)

	email.AssertExpectations(t)
}

func TestSendTestNotFound(t *testing.T) {
	d, store, _ := newTestDispatcher()

	store.On("FindByEmail", "ghost@example.com").Return(nil, nil)

	_, err := d.SendTest("Subject", "Body line", "ghost@example.com")
	require.Error(t, err)
	assert.Equal(t, mailroom.ErrNotFound, mailroom.ErrorCode(err))
}

func TestSendTestDispatchFailure(t *testing.T) {
	d, store, email := newTestDispatcher()

	sub := &mailroom.Subscriber{Email: "op@example.com"}
	store.On("FindByEmail", "op@example.com").Return(sub, nil)
	email.On("SendNewsletterEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := d.SendTest("Subject", "Body line", "op@example.com")
	require.Error(t, err)
	assert.Equal(t, mailroom.ErrUnavailable, mailroom.ErrorCode(err))
}
