package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a submitted password into what the user store
// keeps, and checks a submitted password against a stored value.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// PlainPasswords stores and compares passwords verbatim.  It exists so the
// demo accepts the seeded plain-text credentials; it is not a credential store.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) { return plain, nil }

func (PlainPasswords) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// BcryptPasswords hashes with bcrypt at the given cost.
type BcryptPasswords struct{ Cost int }

// Hash returns bcrypt hash using the configured cost.
func (b BcryptPasswords) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify safely compares bcrypt hash and plain password.
func (BcryptPasswords) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
