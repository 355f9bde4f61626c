package token

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tok, err := New(DefaultLength)
	require.NoError(t, err)
	assert.Len(t, tok, 2*DefaultLength)

	_, err = hex.DecodeString(tok)
	assert.NoError(t, err)

	other, err := New(DefaultLength)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestNewShortLength(t *testing.T) {
	tok, err := New(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}

func TestExpiresAt(t *testing.T) {
	expiry := ExpiresAt(DefaultTTL)
	assert.True(t, expiry.After(time.Now().Add(47*time.Hour)))
	assert.True(t, expiry.Before(time.Now().Add(49*time.Hour)))
}

func TestExpired(t *testing.T) {
	assert.True(t, Expired(time.Now().Add(-time.Second)))
	assert.False(t, Expired(time.Now().Add(time.Hour)))
}
