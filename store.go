package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore is the narrow contract the credential core requires from durable
// storage. Every write is atomic at single-row granularity; no cross-row
// transactions are assumed. Fetch operations signal absence with
// ErrIdentityNotFound (check IsIdentityNotFound), which is a normal outcome,
// not a failure. Anything else coming back from a store is treated as fatal
// to the request.
type UserStore interface {
	// GetByEmail fetches a user by their login key, case sensitive as stored.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByResetTokenHash fetches the user holding the given recovery token
	// digest. Expiry is the caller's problem; this is lookup only.
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)

	// Create inserts a new user row, filling in id and role defaults.
	// A duplicate email fails with ErrEmailTaken.
	Create(ctx context.Context, record *User) (*User, error)

	// UpdatePassword overwrites the password hash and clears both recovery
	// columns in the same statement. Missing rows fail with
	// ErrIdentityNotFound.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SetResetToken stores a recovery token digest and its absolute expiry,
	// overwriting any previously pending token.
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiry time.Time) error

	// ClearResetToken nulls both recovery columns. Clearing an already clear
	// row is a no-op, not an error.
	ClearResetToken(ctx context.Context, id uuid.UUID) error
}
