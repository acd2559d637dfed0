package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AccountState is the derived lifecycle state of an email address. States are
// computed from the stored row, never persisted.
type AccountState string

const (
	// StateNoAccount means no row exists for the email.
	StateNoAccount AccountState = "no_account"
	// StateActive means a row exists; it may or may not carry a local password.
	StateActive AccountState = "active"
	// StateRecoveryPending means an unexpired reset token is outstanding.
	StateRecoveryPending AccountState = "recovery_pending"
)

// StateFor derives the account state for a row at a given instant. An expired
// reset token does not count as pending even if still present in storage.
func StateFor(user *User, now time.Time) AccountState {
	if user == nil {
		return StateNoAccount
	}
	if user.HasPendingReset(now) {
		return StateRecoveryPending
	}
	return StateActive
}

type RegisterMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (m RegisterMessage) Type() string { return "credential.register" }

type AuthenticateMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m AuthenticateMessage) Type() string { return "credential.authenticate" }

type ChangePasswordMessage struct {
	UserID      uuid.UUID `json:"user_id"`
	NewPassword string    `json:"new_password"`
}

func (m ChangePasswordMessage) Type() string { return "credential.change_password" }

type ForgotPasswordMessage struct {
	Email string `json:"email"`
}

func (m ForgotPasswordMessage) Type() string { return "credential.forgot_password" }

type ResetPasswordMessage struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (m ResetPasswordMessage) Type() string { return "credential.reset_password" }

// FederatedLoginMessage carries an identity the federated provider has
// already verified. The state machine trusts it as-is.
type FederatedLoginMessage struct {
	Email      string `json:"email"`
	ProviderID string `json:"provider_id"`
}

func (m FederatedLoginMessage) Type() string { return "credential.federated_login" }

// StateMachine orchestrates every credential transition over the secret
// hasher, the recovery token lifecycle, the token service, and the store.
// It holds no mutable request state and is safe for concurrent use.
type StateMachine struct {
	repo     RepositoryManager
	hasher   *PasswordHasher
	tokens   TokenService
	recovery *RecoveryTokens
	mailer   Mailer
	logger   Logger
	now      func() time.Time
}

var _ Authenticator = (*StateMachine)(nil)

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*StateMachine)

// WithStateMachineLogger overrides the logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *StateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithMailer sets the outbound mail collaborator used by ForgotPassword.
func WithMailer(mailer Mailer) StateMachineOption {
	return func(sm *StateMachine) {
		if mailer != nil {
			sm.mailer = mailer
		}
	}
}

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *StateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithTokenService overrides the session token issuer/verifier.
func WithTokenService(tokens TokenService) StateMachineOption {
	return func(sm *StateMachine) {
		if tokens != nil {
			sm.tokens = tokens
		}
	}
}

// WithRecoveryTokens overrides the recovery token lifecycle.
func WithRecoveryTokens(recovery *RecoveryTokens) StateMachineOption {
	return func(sm *StateMachine) {
		if recovery != nil {
			sm.recovery = recovery
		}
	}
}

// NewStateMachine builds the credential state machine from configuration.
// The signing key and hash cost are read once here and are immutable for the
// life of the process.
func NewStateMachine(repo RepositoryManager, cfg Config, opts ...StateMachineOption) *StateMachine {
	hasher := NewPasswordHasher(cfg.GetBcryptCost())

	sm := &StateMachine{
		repo:   repo,
		hasher: hasher,
		tokens: NewTokenService(
			[]byte(cfg.GetSigningKey()),
			cfg.GetTokenExpiration(),
			cfg.GetIssuer(),
			cfg.GetAudience(),
			defLogger{},
		),
		mailer: noopMailer{},
		logger: defLogger{},
		now:    time.Now,
	}

	sm.recovery = NewRecoveryTokens(repo, hasher, WithRecoveryTTL(cfg.GetResetTokenTTL()))

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// TokenService returns the TokenService instance used by this state machine.
func (sm *StateMachine) TokenService() TokenService {
	return sm.tokens
}

// Register transitions NoAccount -> Active(password). The password is hashed
// before storage; a duplicate email fails with ErrEmailTaken.
func (sm *StateMachine) Register(ctx context.Context, msg RegisterMessage) (*User, error) {
	passwordHash, err := sm.hasher.HashPassword(msg.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	user := &User{
		Email:        msg.Email,
		Role:         DefaultRole(msg.Role),
		PasswordHash: passwordHash,
	}

	created, err := sm.repo.Users().Create(ctx, user)
	if err != nil {
		if IsEmailTaken(err) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to register user")
	}

	return created, nil
}

// Authenticate verifies an email/password pair and issues a bearer session
// token. Unknown email, a passwordless federated-only account, and a hash
// mismatch all return the identical ErrInvalidCredentials.
func (sm *StateMachine) Authenticate(ctx context.Context, msg AuthenticateMessage) (string, error) {
	user, err := sm.repo.Users().GetByEmail(ctx, msg.Email)
	if err != nil {
		if IsIdentityNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !user.HasPassword() {
		return "", ErrInvalidCredentials
	}

	if err := sm.hasher.ComparePasswordAndHash(msg.Password, user.PasswordHash); err != nil {
		return "", ErrInvalidCredentials
	}

	return sm.tokens.Generate(user)
}

// ChangePassword overwrites the password hash for an existing user. Whatever
// recovery token was pending is cleared by the same write, so a previously
// issued reset token stops working immediately.
func (sm *StateMachine) ChangePassword(ctx context.Context, msg ChangePasswordMessage) error {
	passwordHash, err := sm.hasher.HashPassword(msg.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	return sm.repo.Users().UpdatePassword(ctx, msg.UserID, passwordHash)
}

// ForgotPassword starts the recovery flow. Unknown emails get the same nil
// result as known ones and mutate nothing, so the endpoint cannot be used to
// enumerate accounts. Mail delivery is best effort: a failure is logged and
// swallowed, and the stored token stands.
func (sm *StateMachine) ForgotPassword(ctx context.Context, msg ForgotPasswordMessage) error {
	user, err := sm.repo.Users().GetByEmail(ctx, msg.Email)
	if err != nil {
		if IsIdentityNotFound(err) {
			return nil
		}
		return err
	}

	plaintext, expiry, err := sm.recovery.Begin(ctx, user)
	if err != nil {
		return err
	}

	subject, body := resetEmail(plaintext, expiry)
	if err := sm.mailer.Send(ctx, user.Email, subject, body); err != nil {
		sm.logger.Error("failed to deliver password reset email for user %s: %v", user.ID, err)
	}

	return nil
}

// ResetPassword redeems a recovery token. Every failure mode collapses to
// ErrResetTokenInvalid.
func (sm *StateMachine) ResetPassword(ctx context.Context, msg ResetPasswordMessage) error {
	if err := sm.recovery.Consume(ctx, msg.Token, msg.NewPassword); err != nil {
		if IsResetTokenInvalid(err) || IsIdentityNotFound(err) {
			return ErrResetTokenInvalid
		}
		return err
	}
	return nil
}

// FederatedLogin accepts an identity already verified by the external
// provider. First sight of an email provisions a passwordless account with
// the default role; existing accounts are left untouched, password and
// recovery fields included. A bearer session token is issued either way.
func (sm *StateMachine) FederatedLogin(ctx context.Context, msg FederatedLoginMessage) (string, error) {
	user, err := sm.repo.Users().GetByEmail(ctx, msg.Email)
	if err != nil {
		if !IsIdentityNotFound(err) {
			return "", err
		}

		user, err = sm.repo.Users().Create(ctx, &User{
			Email: msg.Email,
			Role:  RoleUser,
		})
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to provision federated user")
		}

		sm.logger.Info("provisioned federated account %s via provider %s", user.ID, msg.ProviderID)
	}

	return sm.tokens.Generate(user)
}

// SessionFromToken verifies a bearer token and returns its session view.
// This path never touches storage.
func (sm *StateMachine) SessionFromToken(raw string) (Session, error) {
	claims, err := sm.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	return sessionFromAuthClaims(claims)
}
