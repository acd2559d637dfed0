package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateUserPasswordSQL swaps the password hash and clears both recovery
// columns in one statement so the row can never hold a stale reset token
// alongside a fresh password.
var UpdateUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_token_hash" = NULL,
	"reset_token_expiry" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

var SetUserResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token_hash" = ?,
	"reset_token_expiry" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

var ClearUserResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token_hash" = NULL,
	"reset_token_expiry" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ UserStore = (*users)(nil)

// NewUsersRepository returns the Bun-backed UserStore implementation.
func NewUsersRepository(db *bun.DB) UserStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getByColumn(ctx, "email", email)
}

func (a *users) GetByResetTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	return a.getByColumn(ctx, "reset_token_hash", tokenHash)
}

func (a *users) getByColumn(ctx context.Context, column, value string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user").
			WithMetadata(map[string]any{"column": column})
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	if _, err := a.GetByEmail(ctx, record.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !IsIdentityNotFound(err) {
		return nil, err
	}

	created, err := a.Repository.CreateTx(ctx, a.db, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}

	return created, nil
}

func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.execRowUpdate(ctx, UpdateUserPasswordSQL, passwordHash, id.String())
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiry time.Time) error {
	return a.execRowUpdate(ctx, SetUserResetTokenSQL, tokenHash, expiry, id.String())
}

func (a *users) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return a.execRowUpdate(ctx, ClearUserResetTokenSQL, id.String())
}

func (a *users) execRowUpdate(ctx context.Context, query string, args ...any) error {
	res, err := a.Repository.RawTx(ctx, a.db, query, args...)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user row")
	}

	if len(res) == 0 {
		return ErrIdentityNotFound
	}

	return nil
}

// isUniqueViolation matches the duplicate key errors of the dialects we run
// against (Postgres 23505, SQLite "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "23505")
}
