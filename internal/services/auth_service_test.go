package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/store"
	pkgauth "github.com/BradenHooton/srm/pkg/auth"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

const testPassword = "Kestrel-harbour-42"

var (
	hashOnce   sync.Once
	cachedHash string
)

// testPasswordHash hashes testPassword once per test binary.
func testPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		hash, err := pkgauth.HashPassword(testPassword)
		require.NoError(t, err)
		cachedHash = hash
	})
	return cachedHash
}

type authFixture struct {
	service     *AuthService
	users       *MockUserRepository
	revocations *MockSessionRevocationRepository
	wizard      *MockWizardSessions
	email       *MockEmailService
	guard       *LoginGuard
	sessions    *auth.SessionManager
	lookups     int
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	f := &authFixture{
		users:       &MockUserRepository{},
		revocations: &MockSessionRevocationRepository{},
		wizard:      &MockWizardSessions{},
		email:       &MockEmailService{},
	}

	user := NewTestUserWithPassword("user-1", "jdoe", "jane@example.com", testPasswordHash(t))
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		f.lookups++
		if username == user.Username {
			return user, nil
		}
		return nil, models.ErrNotFound
	}
	f.users.GetByIDFunc = func(ctx context.Context, id string) (*models.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, models.ErrNotFound
	}

	f.guard = NewLoginGuard(store.NewMemoryStore(), DefaultLoginGuardConfig(), logger)
	f.sessions = auth.NewSessionManager("a-very-long-test-secret", time.Hour, f.users)
	f.service = NewAuthService(
		f.users,
		f.revocations,
		f.guard,
		f.sessions,
		f.wizard,
		forms.NewValidator(),
		f.email,
		nil,
		logger,
		pkglogger.NewAuditLogger(logger),
	)
	return f
}

var loginKey = models.LoginClientKey{IPAddress: "203.0.113.7", Username: "jdoe"}

// ============================================================================
// Login
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), loginKey.IPAddress, "jdoe", testPassword)

	require.NoError(t, err)
	assert.Equal(t, LoginSuccessNotice, result.Notice)
	assert.Equal(t, "user-1", result.User.ID)

	claims, err := f.sessions.Validate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Claims.ID, claims.ID)
}

func TestAuthService_Login_WrongPasswordCountsDown(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), loginKey.IPAddress, "jdoe", "wrong-password")

	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	var failure *LoginFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 9, failure.Status.AttemptsRemaining)
	assert.Equal(t, "Incorrect email or password. 9 attempts remaining before temporary lockout.", failure.Notice)
}

func TestAuthService_Login_UnknownUserCountsAsFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "198.51.100.1", "nobody", testPassword)

	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	status := f.guard.CheckStatus(ctx, models.LoginClientKey{IPAddress: "198.51.100.1", Username: "nobody"})
	assert.Equal(t, 9, status.AttemptsRemaining)
}

func TestAuthService_Login_LockoutSkipsCredentialCheck(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	var err error
	for i := 0; i < 10; i++ {
		_, err = f.service.Login(ctx, loginKey.IPAddress, "jdoe", "wrong-password")
	}
	assert.True(t, errors.Is(err, models.ErrAccountLocked))
	assert.Equal(t, "Account temporarily locked due to too many failed attempts. Please try again in 30 minutes.", err.Error())
	assert.True(t, f.guard.CheckStatus(ctx, loginKey).Blocked)

	lookupsBefore := f.lookups
	_, err = f.service.Login(ctx, loginKey.IPAddress, "jdoe", testPassword)

	assert.True(t, errors.Is(err, models.ErrAccountLocked))
	assert.Equal(t, lookupsBefore, f.lookups, "credentials must not be checked while locked")
}

func TestAuthService_Login_SuccessResetsAttempts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.service.Login(ctx, loginKey.IPAddress, "jdoe", "wrong-password")
		require.Error(t, err)
	}

	_, err := f.service.Login(ctx, loginKey.IPAddress, "jdoe", testPassword)
	require.NoError(t, err)

	assert.Equal(t, 10, f.guard.CheckStatus(ctx, loginKey).AttemptsRemaining)
}

func TestAuthService_Login_LockIsPerAddress(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _ = f.service.Login(ctx, loginKey.IPAddress, "jdoe", "wrong-password")
	}

	_, err := f.service.Login(ctx, "198.51.100.20", "jdoe", testPassword)
	assert.NoError(t, err)
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	f := newAuthFixture(t)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, errors.New("connection refused")
	}

	_, err := f.service.Login(context.Background(), loginKey.IPAddress, "jdoe", testPassword)

	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Equal(t, 10, f.guard.CheckStatus(context.Background(), loginKey).AttemptsRemaining)
}

// ============================================================================
// Register
// ============================================================================

func registration() url.Values {
	return url.Values{
		"username":   {"asmith"},
		"first_name": {"Alex"},
		"last_name":  {"Smith"},
		"email":      {"alex@example.com"},
		"password1":  {testPassword},
		"password2":  {testPassword},
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)
	var created *models.User
	f.users.CreateFunc = func(ctx context.Context, user *models.User) (*models.User, error) {
		user.ID = "user-2"
		user.TokenKey = "token-key-user-2"
		created = user
		return user, nil
	}
	f.users.GetByIDFunc = func(ctx context.Context, id string) (*models.User, error) {
		return created, nil
	}
	welcomed := false
	f.email.SendWelcomeEmailFunc = func(ctx context.Context, user *models.User) error {
		welcomed = true
		return nil
	}

	result, fieldErrors, err := f.service.Register(context.Background(), registration(), "203.0.113.7")

	require.NoError(t, err)
	assert.Nil(t, fieldErrors)
	assert.Equal(t, RegisteredNotice, result.Notice)
	assert.True(t, welcomed)
	assert.NoError(t, pkgauth.ComparePassword(created.PasswordHash, testPassword))

	// registration signs the user straight in
	claims, err := f.sessions.Validate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.users.GetByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return NewTestUser("user-9", "someone", email), nil
	}
	f.users.CreateFunc = func(ctx context.Context, user *models.User) (*models.User, error) {
		t.Fatal("user must not be created")
		return nil, nil
	}

	_, fieldErrors, err := f.service.Register(context.Background(), registration(), "203.0.113.7")

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, []string{EmailRegisteredError}, fieldErrors["email"])
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	values := registration()
	values.Set("username", "jdoe")

	_, fieldErrors, err := f.service.Register(context.Background(), values, "203.0.113.7")

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, []string{UsernameTakenError}, fieldErrors["username"])
}

func TestAuthService_Register_ReportsFormAndUniquenessTogether(t *testing.T) {
	f := newAuthFixture(t)
	f.users.GetByEmailFunc = func(ctx context.Context, email string) (*models.User, error) {
		return NewTestUser("user-9", "someone", email), nil
	}
	values := registration()
	values.Set("password2", "something-else-entirely")

	_, fieldErrors, err := f.service.Register(context.Background(), values, "203.0.113.7")

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.True(t, fieldErrors.Has("password2"))
	assert.True(t, fieldErrors.Has("email"))
}

func TestAuthService_Register_CreateConflict(t *testing.T) {
	f := newAuthFixture(t)
	f.users.CreateFunc = func(ctx context.Context, user *models.User) (*models.User, error) {
		return nil, models.ErrConflict
	}

	_, fieldErrors, err := f.service.Register(context.Background(), registration(), "203.0.113.7")

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.True(t, fieldErrors.Has(forms.NonFieldErrors))
}

func TestAuthService_Register_EmailFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.CreateFunc = func(ctx context.Context, user *models.User) (*models.User, error) {
		user.ID = "user-3"
		return user, nil
	}
	f.email.SendWelcomeEmailFunc = func(ctx context.Context, user *models.User) error {
		return errors.New("ses throttled")
	}

	result, _, err := f.service.Register(context.Background(), registration(), "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, "user-3", result.User.ID)
}

// ============================================================================
// Logout
// ============================================================================

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	result, err := f.service.Login(context.Background(), loginKey.IPAddress, "jdoe", testPassword)
	require.NoError(t, err)

	var revokedJTI string
	var revokedUntil time.Time
	f.revocations.RevokeSessionFunc = func(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
		revokedJTI = jti
		revokedUntil = expiresAt
		assert.Equal(t, "logout", reason)
		return nil
	}
	var clearedWizard string
	f.wizard.DeleteFunc = func(ctx context.Context, sessionID string) error {
		clearedWizard = sessionID
		return nil
	}

	require.NoError(t, f.service.Logout(context.Background(), result.Claims, loginKey.IPAddress))

	assert.Equal(t, result.Claims.ID, revokedJTI)
	assert.Equal(t, result.Claims.ExpiresAt.Time, revokedUntil)
	assert.Equal(t, result.Claims.ID, clearedWizard)
}

func TestAuthService_Logout_RevocationFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.revocations.RevokeSessionFunc = func(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
		return errors.New("database down")
	}

	err := f.service.Logout(context.Background(), &models.SessionClaims{UserID: "user-1"}, loginKey.IPAddress)

	assert.ErrorIs(t, err, models.ErrInternalServer)
}
