// Package auth implements the credential and session lifecycle for a
// single-tenant user directory: issuing and verifying proof of identity for
// HTTP clients.
//
// Credential state machine:
//   - StateMachine orchestrates register, authenticate, change-password,
//     forgot-password, reset-password, and federated-login as transitions
//     over the secret hasher, the recovery token lifecycle, the token
//     service, and a narrow UserStore contract. Accounts move between the
//     derived states NoAccount, Active, and RecoveryPending.
//
// Recovery tokens:
//   - RecoveryTokens generates high-entropy single-use reset tokens, stores
//     only their SHA-256 digest with an absolute expiry, and consumes them
//     atomically. Plaintext tokens exist only in the reset email body.
//
// Sessions:
//   - TokenService signs and validates stateless HS256 bearer tokens that
//     carry subject, email, and role. Verification of an existing token never
//     touches storage.
//
// Storage and mail are collaborators behind interfaces; a Bun-backed
// UserStore implementation and a go-router JSON controller are included for
// hosts that want the batteries.
package auth
