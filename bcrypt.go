package auth

import (
	"golang.org/x/crypto/bcrypt"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultBcryptCost is the adaptive cost used when none is configured.
const DefaultBcryptCost = 14

// PasswordHasher hashes and verifies password grade secrets with bcrypt.
// The cost factor is fixed at construction, callers never supply it.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given cost. Costs outside
// bcrypt's supported range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword will generate a salted password hash. Hashing the same
// plaintext twice yields different digests; both verify.
func (p *PasswordHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. A malformed or empty hash is a mismatch, never a
// panic or an infrastructure error.
func (p *PasswordHasher) ComparePasswordAndHash(password, hash string) error {
	if hash == "" {
		return ErrMismatchedHashAndPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

var _ PasswordAuthenticator = (*PasswordHasher)(nil)

// HashPassword will generate a password hash using the default cost
func HashPassword(password string) (string, error) {
	return NewPasswordHasher(DefaultBcryptCost).HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return NewPasswordHasher(DefaultBcryptCost).ComparePasswordAndHash(password, hash)
}
