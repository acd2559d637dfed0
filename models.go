package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the sole persistent entity: one row per directory member.
//
// PasswordHash is empty only for accounts provisioned through federated
// identity that were never given a local password. ResetTokenHash and
// ResetTokenExpiry are either both set (recovery pending) or both null;
// every password write clears them.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email            string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role             UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	PasswordHash     string     `bun:"password_hash,nullzero" json:"-"`
	ResetTokenHash   string     `bun:"reset_token_hash,nullzero" json:"-"`
	ResetTokenExpiry *time.Time `bun:"reset_token_expiry,nullzero" json:"-"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPassword reports whether the account carries a local password. Federated
// accounts without one can never authenticate with email and password.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// HasPendingReset reports whether an unexpired recovery token is outstanding.
// Expiry is checked, not just presence: a stale row does not count.
func (u *User) HasPendingReset(now time.Time) bool {
	if u == nil || u.ResetTokenHash == "" || u.ResetTokenExpiry == nil {
		return false
	}
	return u.ResetTokenExpiry.After(now)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Role = DefaultRole(record.Role)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
