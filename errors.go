package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeEmailTaken flags a registration against an existing email.
	TextCodeEmailTaken = "EMAIL_TAKEN"
	// TextCodeInvalidCredentials flags a failed authentication. Unknown email,
	// passwordless account, and wrong password all map here so callers cannot
	// enumerate accounts.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeResetTokenInvalid flags a failed reset, without distinguishing
	// missing from expired tokens.
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	// TextCodeTokenExpired flags an expired bearer token.
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed flags a structurally invalid bearer token.
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = goerrors.New("email address is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is the single error for every authentication failure.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrResetTokenInvalid is the single error for every recovery token failure.
var ErrResetTokenInvalid = goerrors.New("invalid or expired reset token", goerrors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrIdentityNotFound signals absence from the store. Absence is a normal
// outcome the state machine handles, not an infrastructure failure.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTokenExpired is returned when a bearer token is past its expiry.
var ErrTokenExpired = goerrors.New("authentication token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a bearer token fails structural or
// signature checks.
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the typed bcrypt mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("hashed password is not the hash of the given password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims into a session
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsEmailTaken will check for duplicate email conflicts.
func IsEmailTaken(err error) bool {
	return hasTextCode(err, TextCodeEmailTaken)
}

// IsInvalidCredentials will check for authentication failures.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsResetTokenInvalid will check for recovery token failures.
func IsResetTokenInvalid(err error) bool {
	return hasTextCode(err, TextCodeResetTokenInvalid)
}

// IsIdentityNotFound reports whether err signals store absence.
func IsIdentityNotFound(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrIdentityNotFound) {
		return true
	}
	return goerrors.IsNotFound(err)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
