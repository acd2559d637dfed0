package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-credentials"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *auth.User {
	return &auth.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Role:  auth.RoleUser,
	}
}

func TestTokenServiceGenerate(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), 1, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil)
	user := testUser()

	token, err := ts.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsedToken, err := jwt.ParseWithClaims(token, &auth.JWTClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	require.True(t, parsedToken.Valid)

	claims, ok := parsedToken.Claims.(*auth.JWTClaims)
	require.True(t, ok)

	assert.Equal(t, user.ID.String(), claims.Subject())
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email())
	assert.Equal(t, auth.RoleUser, claims.Role())
	assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"test:audience"}, claims.RegisteredClaims.Audience)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)

	// fixed one hour horizon
	assert.WithinDuration(t, claims.IssuedAt().Add(time.Hour), claims.Expires(), time.Second)
}

func TestTokenServiceGenerateNilUser(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), 1, "", nil, nil)

	token, err := ts.Generate(nil)
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestTokenServiceValidate(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), 1, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil)
	user := testUser()

	t.Run("Valid token roundtrip", func(t *testing.T) {
		token, err := ts.Generate(user)
		require.NoError(t, err)

		claims, err := ts.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, user.Email, claims.Email())
		assert.Equal(t, user.Role, claims.Role())
	})

	t.Run("Expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		issuer := auth.NewTokenService([]byte("test-signing-key"), 1, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil).
			WithClock(func() time.Time { return past })

		token, err := issuer.Generate(user)
		require.NoError(t, err)

		claims, err := ts.Validate(token)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("Wrong signing key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("some-other-key"), 1, "test-issuer", jwt.ClaimStrings{"test:audience"}, nil)

		token, err := other.Generate(user)
		require.NoError(t, err)

		claims, err := ts.Validate(token)
		assert.Nil(t, claims)
		assert.Error(t, err)
	})

	t.Run("Malformed token", func(t *testing.T) {
		claims, err := ts.Validate("not.a.token")
		assert.Nil(t, claims)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService([]byte("test-signing-key"), 1, "other-issuer", jwt.ClaimStrings{"test:audience"}, nil)

		token, err := other.Generate(user)
		require.NoError(t, err)

		claims, err := ts.Validate(token)
		assert.Nil(t, claims)
		assert.Error(t, err)
	})
}

func TestSessionFromTokenClaims(t *testing.T) {
	cfg := newMockConfig()
	store := new(MockUserStore)
	sm := auth.NewStateMachine(newTestRepoManager(store), cfg)

	user := testUser()
	token, err := sm.TokenService().Generate(user)
	require.NoError(t, err)

	session, err := sm.SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), session.GetUserID())
	assert.Equal(t, user.Email, session.GetEmail())
	assert.Equal(t, user.Role, session.GetRole())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, []string{"test:audience"}, session.GetAudience())

	id, err := session.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	require.NotNil(t, session.GetExpiration())
	assert.True(t, session.GetExpiration().After(time.Now()))
}
