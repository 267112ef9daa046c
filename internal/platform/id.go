package platform

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

const scratchAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const scratchLength = 16

// NewID returns a random UUID, used for request and audit correlation.
func NewID() string {
	return uuid.New().String()
}

// NewName returns prefix followed by 16 random lowercase alphanumerics.
// The alphabet is shell- and path-safe.
func NewName(prefix string) string {
	b := make([]byte, scratchLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = scratchAlphabet[b[i]%byte(len(scratchAlphabet))]
	}
	return prefix + string(b)
}

// NewPassword returns a URL-safe random password carrying 128 bits of entropy.
func NewPassword() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
