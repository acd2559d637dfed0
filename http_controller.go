package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes are the default mount points, matching the original
// HTTP surface of the service.
type AuthControllerRoutes struct {
	Register       string
	Login          string
	ChangePassword string
	ForgotPassword string
	ResetPassword  string
}

// AuthController is the thin JSON adapter between HTTP and the state
// machine. Input shape validation (well-formed email, minimum password
// length) lives here: the core assumes it already happened.
type AuthController struct {
	Auth   Authenticator
	Logger Logger
	Routes *AuthControllerRoutes
}

// AuthControllerOption configures the controller
type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the logger instance
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerRoutes overrides the default mount points
func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

// NewAuthController creates a controller bound to the given state machine.
func NewAuthController(auth Authenticator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Auth:   auth,
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:       "/register",
			Login:          "/login",
			ChangePassword: "/change-password",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// RegisterAuthRoutes mounts the credential endpoints on the given router.
// FederatedCallback is deliberately not mounted here: it trusts pre-verified
// input, so the host must place it behind its identity provider handshake.
func RegisterAuthRoutes[T any](app router.Router[T], controller *AuthController) {
	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("credentials.register")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("credentials.login")
	app.Post(controller.Routes.ChangePassword, controller.ChangePasswordPost).
		SetName("credentials.change-password")
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost).
		SetName("credentials.forgot-password")
	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordPost).
		SetName("credentials.reset-password")
}

// RegisterPayload is the registration request body
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	user, err := a.Auth.Register(ctx.Context(), RegisterMessage{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	token, err := a.Auth.Authenticate(ctx.Context(), AuthenticateMessage{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	session, err := a.Auth.SessionFromToken(token)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"email": session.GetEmail(),
		"role":  session.GetRole(),
		"token": token,
	})
}

// ChangePasswordPayload is the change password request body
type ChangePasswordPayload struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) ChangePasswordPost(ctx router.Context) error {
	session, err := a.sessionFromRequest(ctx)
	if err != nil {
		return a.renderError(ctx, err)
	}

	payload := new(ChangePasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return a.renderError(ctx, ErrTokenMalformed)
	}

	if err := a.Auth.ChangePassword(ctx.Context(), ChangePasswordMessage{
		UserID:      userID,
		NewPassword: payload.Password,
	}); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Password updated",
	})
}

// ForgotPasswordPayload is the forgot password request body
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	if err := a.Auth.ForgotPassword(ctx.Context(), ForgotPasswordMessage{
		Email: payload.Email,
	}); err != nil {
		return a.renderError(ctx, err)
	}

	// identical shape for known and unknown emails
	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "If that account exists, a reset token has been sent",
	})
}

// ResetPasswordPayload is the reset password request body
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(ctx router.Context) error {
	payload := new(ResetPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	if err := a.Auth.ResetPassword(ctx.Context(), ResetPasswordMessage{
		Token:       payload.Token,
		NewPassword: payload.Password,
	}); err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": "Password updated",
	})
}

// FederatedCallbackPayload carries the identity the provider verified.
type FederatedCallbackPayload struct {
	Email      string `json:"email"`
	ProviderID string `json:"provider_id"`
}

// Validate will run validation rules
func (r FederatedCallbackPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.ProviderID, validation.Required),
	)
}

// FederatedCallback completes a federated login. Mount it only behind the
// provider handshake: the payload is trusted as already verified.
func (a *AuthController) FederatedCallback(ctx router.Context) error {
	payload := new(FederatedCallbackPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "error parsing body", err)
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, "error validating payload", err)
	}

	token, err := a.Auth.FederatedLogin(ctx.Context(), FederatedLoginMessage{
		Email:      payload.Email,
		ProviderID: payload.ProviderID,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	session, err := a.Auth.SessionFromToken(token)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"email": session.GetEmail(),
		"role":  session.GetRole(),
		"token": token,
	})
}

func (a *AuthController) sessionFromRequest(ctx router.Context) (Session, error) {
	header := ctx.Header("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, ErrTokenMalformed
	}
	return a.Auth.SessionFromToken(strings.TrimSpace(token))
}

func (a *AuthController) badRequest(ctx router.Context, msg string, err error) error {
	a.Logger.Debug("auth controller bad request: %s: %v", msg, err)
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"message": msg,
	})
}

func (a *AuthController) renderError(ctx router.Context, err error) error {
	status := router.StatusInternalServerError
	message := "request failed"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code > 0 {
			status = int(richErr.Code)
		}
		message = richErr.Message
	}

	if status >= router.StatusInternalServerError {
		a.Logger.Error("auth controller error: %v", err)
		message = "request failed"
	}

	return ctx.JSON(status, map[string]any{
		"message": message,
	})
}
