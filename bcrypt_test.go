package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			err = hasher.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.HashPassword("Passw0rd1")
	require.NoError(t, err)

	second, err := hasher.HashPassword("Passw0rd1")
	require.NoError(t, err)

	// random salt per call: digests differ, both verify
	assert.NotEqual(t, first, second)
	assert.NoError(t, hasher.ComparePasswordAndHash("Passw0rd1", first))
	assert.NoError(t, hasher.ComparePasswordAndHash("Passw0rd1", second))
}

func TestComparePasswordAndHash(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	password := "testPassword123!"
	hash, err := hasher.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Empty hash",
			password: password,
			hash:     "",
			wantErr:  true,
		},
		{
			name:     "Malformed hash",
			password: password,
			hash:     "not-a-bcrypt-digest",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	// out of range costs fall back to the default rather than failing later
	hasher := auth.NewPasswordHasher(99)

	hash, err := hasher.HashPassword("Passw0rd1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultBcryptCost, cost)
}
