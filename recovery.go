package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultResetTokenTTL is the recovery token expiry horizon.
	DefaultResetTokenTTL = time.Hour
	// resetTokenBytes gives 256 bits of entropy per token.
	resetTokenBytes = 32
)

// HashResetToken computes the at-rest digest of a recovery token. A fast
// general purpose hash is enough here: unlike a password the token carries
// its own entropy and is not guessable by dictionary.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RecoveryTokens owns the lifecycle of password reset secrets: generation,
// hashed-at-rest storage, expiry, and single-use consumption.
type RecoveryTokens struct {
	repo   RepositoryManager
	hasher *PasswordHasher
	ttl    time.Duration
	now    func() time.Time
	logger Logger
}

// RecoveryTokensOption customizes RecoveryTokens construction.
type RecoveryTokensOption func(*RecoveryTokens)

// WithRecoveryTTL overrides the expiry horizon.
func WithRecoveryTTL(ttl time.Duration) RecoveryTokensOption {
	return func(r *RecoveryTokens) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRecoveryClock injects a custom clock (useful for tests).
func WithRecoveryClock(clock func() time.Time) RecoveryTokensOption {
	return func(r *RecoveryTokens) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithRecoveryLogger overrides the logger.
func WithRecoveryLogger(logger Logger) RecoveryTokensOption {
	return func(r *RecoveryTokens) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecoveryTokens returns the lifecycle bound to the given repositories
// and hasher.
func NewRecoveryTokens(repo RepositoryManager, hasher *PasswordHasher, opts ...RecoveryTokensOption) *RecoveryTokens {
	r := &RecoveryTokens{
		repo:   repo,
		hasher: hasher,
		ttl:    DefaultResetTokenTTL,
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Begin generates a fresh recovery token for the user, persists its digest
// and expiry (overwriting any previously pending token), and returns the
// plaintext for one-time out-of-band delivery. The plaintext is never
// persisted and must never be logged.
func (r *RecoveryTokens) Begin(ctx context.Context, user *User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	plaintext := base64.RawURLEncoding.EncodeToString(buf)
	expiry := r.now().Add(r.ttl)

	if err := r.repo.Users().SetResetToken(ctx, user.ID, HashResetToken(plaintext), expiry); err != nil {
		return "", time.Time{}, err
	}

	return plaintext, expiry, nil
}

// Consume redeems a recovery token: it requires a matching row whose expiry
// is set and in the future, then swaps in the new password hash while
// clearing both recovery columns in the same write. Missing and expired
// tokens fail with the same ErrResetTokenInvalid so callers cannot probe
// which condition tripped. Expired rows are cleared opportunistically so a
// stale token cannot sit in storage forever.
func (r *RecoveryTokens) Consume(ctx context.Context, plaintext, newPassword string) error {
	user, err := r.repo.Users().GetByResetTokenHash(ctx, HashResetToken(plaintext))
	if err != nil {
		if IsIdentityNotFound(err) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if !user.HasPendingReset(r.now()) {
		// lazy invalidation: the row is stale, drop it before rejecting
		if err := r.repo.Users().ClearResetToken(ctx, user.ID); err != nil {
			r.logger.Warn("failed to clear expired reset token for user %s: %v", user.ID, err)
		}
		return ErrResetTokenInvalid
	}

	passwordHash, err := r.hasher.HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	return r.repo.Users().UpdatePassword(ctx, user.ID, passwordHash)
}
