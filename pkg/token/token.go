package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultLength is the number of random bytes per token; the hex form is
	// twice as long.
	DefaultLength = 32

	// DefaultTTL is how long a confirmation token stays valid.
	DefaultTTL = 48 * time.Hour
)

// New returns a hex-encoded token of 2*length characters drawn from the
// crypto random source. These tokens are the only secret protecting the
// confirm and unsubscribe actions, so a general-purpose PRNG won't do.
func New(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}

	return hex.EncodeToString(b), nil
}

// ExpiresAt returns the absolute expiry instant for a token issued now.
func ExpiresAt(ttl time.Duration) time.Time {
	return time.Now().Add(ttl)
}

// Expired reports whether now is strictly after t.
func Expired(t time.Time) bool {
	return time.Now().After(t)
}
