package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/auth"
	"github.com/mfgops/backend/internal/infrastructure/cache"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) CreateWithOwner(ctx context.Context, tenant *identity.Tenant, owner *identity.User) error {
	return m.Called(ctx, tenant, owner).Error(0)
}

// recordingSender keeps the last code sent to each phone
type recordingSender struct {
	codes map[string]string
	err   error
}

func (s *recordingSender) Send(_ context.Context, phone, code string) error {
	if s.err != nil {
		return s.err
	}
	s.codes[phone] = code
	return nil
}

type authFixture struct {
	svc       *AuthService
	users     *MockUserRepository
	tenants   *MockTenantRepository
	otps      *cache.InMemoryOTPStore
	sender    *recordingSender
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	clock     time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:     new(MockUserRepository),
		tenants:   new(MockTenantRepository),
		otps:      cache.NewInMemoryOTPStore(),
		sender:    &recordingSender{codes: map[string]string{}},
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-access-secret-at-least-32-bytes",
			RefreshSecret:          "test-refresh-secret-at-least-32-bytes",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "mfgops-test",
			MaxRefreshCount:        3,
		}),
		clock: time.Now(),
	}
	t.Cleanup(func() { _ = f.otps.Close() })

	f.svc = NewAuthService(f.users, f.tenants, f.otps, f.sender, f.jwt, f.blacklist, config.OTPConfig{
		Length:             6,
		TTL:                5 * time.Minute,
		MaxAttempts:        3,
		ResendInterval:     30 * time.Second,
		DefaultCountryCode: "91",
	}, zap.NewNop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *authFixture) existingUser(t *testing.T, phone string) *identity.User {
	t.Helper()
	tenant, err := identity.NewTenant("Acme Garments", f.clock)
	require.NoError(t, err)
	user, err := identity.NewUser(tenant.ID, phone, identity.RoleOwner, f.clock)
	require.NoError(t, err)
	user.ClearDomainEvents()
	f.users.On("FindByPhone", mock.Anything, phone).Return(user, nil)
	f.tenants.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.users.On("Update", mock.Anything, user).Return(nil)
	return user
}

func (f *authFixture) signIn(t *testing.T, phone string) *LoginResponse {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
	require.NoError(t, err)
	resp, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone]})
	require.NoError(t, err)
	return resp
}

func TestAuthService_RequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the phone and sends a code", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "098200 12345"})

		require.NoError(t, err)
		assert.Equal(t, "+919820012345", resp.Phone)
		assert.Equal(t, f.clock.Add(5*time.Minute), resp.ExpiresAt)
		assert.Equal(t, f.clock.Add(30*time.Second), resp.ResendAfter)
		assert.Len(t, f.sender.codes["+919820012345"], 6)

		stored, err := f.otps.Get(ctx, "+919820012345")
		require.NoError(t, err)
		assert.NotEqual(t, f.sender.codes["+919820012345"], stored.CodeHash)
	})

	t.Run("too soon after the previous code", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "+919820012345"})
		require.NoError(t, err)

		f.clock = f.clock.Add(10 * time.Second)
		_, err = f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "+919820012345"})

		assert.ErrorIs(t, err, identity.ErrOTPTooSoon)
	})

	t.Run("resend replaces the pending code", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "+919820012345"})
		require.NoError(t, err)
		first, _ := f.otps.Get(ctx, "+919820012345")

		f.clock = f.clock.Add(31 * time.Second)
		_, err = f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "+919820012345"})
		require.NoError(t, err)

		second, _ := f.otps.Get(ctx, "+919820012345")
		assert.True(t, second.CreatedAt.After(first.CreatedAt))
	})

	t.Run("invalid phone", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "call me maybe"})
		assert.ErrorIs(t, err, identity.ErrInvalidPhone)
	})

	t.Run("delivery failure drops the challenge", func(t *testing.T) {
		f := newAuthFixture(t)
		f.sender.err = errors.New("gateway down")

		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: "+919820012345"})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "OTP_SEND_FAILED", de.Code)
		_, err = f.otps.Get(ctx, "+919820012345")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	ctx := context.Background()
	const phone = "+919820012345"

	t.Run("existing user", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.existingUser(t, phone)

		resp := f.signIn(t, phone)

		assert.False(t, resp.NewTenant)
		assert.Equal(t, user.ID, resp.User.ID)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, "Bearer", resp.Token.TokenType)

		claims, err := f.jwt.ValidateAccessToken(resp.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.TenantID.String(), claims.TenantID)

		_, err = f.otps.Get(ctx, phone)
		assert.ErrorIs(t, err, shared.ErrNotFound, "a used code cannot be replayed")
	})

	t.Run("first sign-in provisions a tenant", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByPhone", mock.Anything, phone).Return(nil, shared.ErrNotFound)
		f.tenants.On("CreateWithOwner", mock.Anything,
			mock.MatchedBy(func(tn *identity.Tenant) bool { return tn.Name == "Sunrise Tailors" }),
			mock.MatchedBy(func(u *identity.User) bool { return u.Role == identity.RoleOwner && u.Phone == phone }),
		).Return(nil)
		f.users.On("Update", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)
		resp, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone], WorkspaceName: "Sunrise Tailors"})

		require.NoError(t, err)
		assert.True(t, resp.NewTenant)
		assert.Equal(t, "owner", resp.User.Role)
		f.tenants.AssertExpectations(t)
	})

	t.Run("wrong code counts an attempt", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)

		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: wrongCode(f.sender.codes[phone])})

		assert.ErrorIs(t, err, identity.ErrOTPInvalid)
		stored, err := f.otps.Get(ctx, phone)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Attempts)
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)
		bad := wrongCode(f.sender.codes[phone])

		for i := 0; i < 2; i++ {
			_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: bad})
			require.ErrorIs(t, err, identity.ErrOTPInvalid)
		}
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: bad})

		assert.ErrorIs(t, err, identity.ErrOTPAttemptsExceeded)
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone]})
		assert.ErrorIs(t, err, identity.ErrOTPExpired, "the challenge is gone after lockout")
	})

	t.Run("expired code", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)

		f.clock = f.clock.Add(6 * time.Minute)
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone]})

		assert.ErrorIs(t, err, identity.ErrOTPExpired)
	})

	t.Run("no pending code", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: "123456"})
		assert.ErrorIs(t, err, identity.ErrOTPExpired)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		f := newAuthFixture(t)
		tenant, _ := identity.NewTenant("Closed", f.clock)
		tenant.Status = identity.TenantStatusInactive
		user, _ := identity.NewUser(tenant.ID, phone, identity.RoleStaff, f.clock)
		f.users.On("FindByPhone", mock.Anything, phone).Return(user, nil)
		f.tenants.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)
		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone]})

		assert.ErrorIs(t, err, ErrTenantInactive)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAuthService_VerifyOTP_Concurrent(t *testing.T) {
	ctx := context.Background()
	const phone = "+919820012345"

	verifyAll := func(f *authFixture, code string, n int) []error {
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: code})
			}(i)
		}
		wg.Wait()
		return errs
	}

	t.Run("wrong guesses are limited", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)

		errs := verifyAll(f, wrongCode(f.sender.codes[phone]), 30)

		invalid := 0
		for _, err := range errs {
			require.Error(t, err)
			if errors.Is(err, identity.ErrOTPInvalid) {
				invalid++
				continue
			}
			assert.True(t, errors.Is(err, identity.ErrOTPAttemptsExceeded) || errors.Is(err, identity.ErrOTPExpired), err)
		}
		assert.Equal(t, 2, invalid, "only tries before the last attempt report a wrong code")

		_, err = f.svc.VerifyOTP(ctx, VerifyOTPRequest{Phone: phone, Code: f.sender.codes[phone]})
		assert.Error(t, err, "the real code no longer works")
	})

	t.Run("right code signs in once", func(t *testing.T) {
		f := newAuthFixture(t)
		f.svc.config.MaxAttempts = 10
		f.existingUser(t, phone)
		_, err := f.svc.RequestOTP(ctx, RequestOTPRequest{Phone: phone})
		require.NoError(t, err)

		errs := verifyAll(f, f.sender.codes[phone], 5)

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, identity.ErrOTPExpired)
		}
		assert.Equal(t, 1, ok)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.existingUser(t, "+919820012345")
	login := f.signIn(t, "+919820012345")

	pair, err := f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Token.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.AccessToken, pair.AccessToken)

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Token.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked, "refresh tokens are single use")

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Token.AccessToken})
	assert.ErrorIs(t, err, ErrTokenInvalid, "an access token is not a refresh token")
}

func TestAuthService_LogoutRevokesTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.existingUser(t, "+919820012345")
	login := f.signIn(t, "+919820012345")

	session, err := f.svc.Authenticate(ctx, login.Token.AccessToken)
	require.NoError(t, err)
	assert.True(t, session.IsOwner())

	require.NoError(t, f.svc.Logout(ctx, session, LogoutRequest{RefreshToken: login.Token.RefreshToken}))

	_, err = f.svc.Authenticate(ctx, login.Token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Token.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_LogoutRejectsAnotherUsersRefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.existingUser(t, "+919820012345")
	login := f.signIn(t, "+919820012345")

	other := identity.Session{TenantID: uuid.New(), UserID: uuid.New(), ExpiresAt: f.clock.Add(time.Minute), TokenID: "jti"}
	err := f.svc.Logout(ctx, other, LogoutRequest{RefreshToken: login.Token.RefreshToken})

	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func wrongCode(code string) string {
	if strings.HasPrefix(code, "0") {
		return "1" + code[1:]
	}
	return "0" + code[1:]
}
