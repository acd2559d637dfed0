package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	auth "github.com/goliatone/go-credentials"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByResetTokenHash(ctx context.Context, tokenHash string) (*auth.User, error) {
	args := m.Called(ctx, tokenHash)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, record *auth.User) (*auth.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserStore) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiry time.Time) error {
	args := m.Called(ctx, id, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// testRepoManager satisfies auth.RepositoryManager over a mocked store.
type testRepoManager struct {
	users auth.UserStore
}

func newTestRepoManager(users auth.UserStore) *testRepoManager {
	return &testRepoManager{users: users}
}

func (m *testRepoManager) Users() auth.UserStore { return m.users }

func (m *testRepoManager) Validate() error { return nil }

func (m *testRepoManager) MustValidate() {}

func (m *testRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockConfig) GetBcryptCost() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetResetTokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetTokenExpiration").Return(1)
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	mockConfig.On("GetBcryptCost").Return(4)
	mockConfig.On("GetResetTokenTTL").Return(time.Hour)
	return mockConfig
}

// resetTokenFromBody digs the plaintext recovery token out of a delivered
// email body by matching it against the digest at rest.
func resetTokenFromBody(t *testing.T, body, storedHash string) string {
	t.Helper()
	for _, word := range strings.Fields(body) {
		if auth.HashResetToken(word) == storedHash {
			return word
		}
	}
	t.Fatalf("no word in the mailed body matches the stored digest")
	return ""
}

// testLogger routes library logging through the test log.
type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(format string, args ...any) { l.t.Logf("[DBG] "+format, args...) }
func (l testLogger) Info(format string, args ...any)  { l.t.Logf("[INF] "+format, args...) }
func (l testLogger) Warn(format string, args ...any)  { l.t.Logf("[WRN] "+format, args...) }
func (l testLogger) Error(format string, args ...any) { l.t.Logf("[ERR] "+format, args...) }
