package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an auth session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetEmail() string
	GetRole() string
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Authenticator exposes the credential transitions a host application drives.
// All domain failures come back as typed errors, see errors.go.
type Authenticator interface {
	Register(ctx context.Context, msg RegisterMessage) (*User, error)
	Authenticate(ctx context.Context, msg AuthenticateMessage) (string, error)
	ChangePassword(ctx context.Context, msg ChangePasswordMessage) error
	ForgotPassword(ctx context.Context, msg ForgotPasswordMessage) error
	ResetPassword(ctx context.Context, msg ResetPasswordMessage) error
	FederatedLogin(ctx context.Context, msg FederatedLoginMessage) (string, error)
	SessionFromToken(token string) (Session, error)
}

// Config holds auth options. The values are read once at construction time
// and live for the lifetime of the process.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetBcryptCost() int
	GetResetTokenTTL() time.Duration
}

// Mailer is the outbound mail collaborator. Delivery is best effort: the
// state machine logs and swallows errors, it never fails a request on them.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailerFunc adapts a function into a Mailer.
type MailerFunc func(ctx context.Context, to, subject, body string) error

func (f MailerFunc) Send(ctx context.Context, to, subject, body string) error {
	if f == nil {
		return nil
	}
	return f(ctx, to, subject, body)
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, to, subject, body string) error { return nil }

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
