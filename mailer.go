package auth

import (
	"fmt"
	"time"
)

const resetEmailSubject = "Password reset"

// resetEmail renders the one-time delivery of a recovery token. The token
// lives only in the returned body; it must never end up in logs or in the
// response to the unauthenticated caller.
func resetEmail(token string, expiry time.Time) (subject, body string) {
	body = fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset token: %s\n\n"+
			"The token expires at %s and can be used once. If you did not "+
			"request this, you can ignore this message.\n",
		token,
		expiry.UTC().Format(time.RFC1123),
	)
	return resetEmailSubject, body
}
