package service

import (
	"context"
	"testing"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newAuthFixture() (*MockUserRepository, *MockRevokedTokenStore, *authService) {
	users := new(MockUserRepository)
	revoked := new(MockRevokedTokenStore)
	svc := NewAuthService(users, revoked, NewNoOpLogger(), AuthServiceConfig{JWTSecret: testSecret, TokenTTL: time.Hour}).(*authService)
	return users, revoked, svc
}

func hashedUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: "u1", Email: "alice@example.com", PasswordHash: string(hash), Role: entity.RoleCustomer, IsActive: true}
}

func TestAuthService_Register(t *testing.T) {
	users, _, svc := newAuthFixture()
	ctx := context.Background()

	users.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "alice@example.com" && u.Role == entity.RoleCustomer &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) == nil
	})).Return(nil).Once()

	user, err := svc.Register(ctx, "alice", " Alice@Example.com ", "secret1")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	users.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	_, _, svc := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@b.c", "secret1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(ctx, "alice", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(ctx, "alice", "a@b.c", "123")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users, _, svc := newAuthFixture()
	ctx := context.Background()
	users.On("Create", ctx, mock.Anything).Return(repository.ErrAlreadyExists)

	_, err := svc.Register(ctx, "alice", "a@b.c", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	users, revoked, svc := newAuthFixture()
	ctx := context.Background()
	user := hashedUser(t, "secret1")

	users.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
	revoked.On("IsRevoked", ctx, mock.Anything).Return(false, nil)

	res, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	users, _, svc := newAuthFixture()
	ctx := context.Background()
	inactive := hashedUser(t, "secret1")
	inactive.IsActive = false

	users.On("GetByEmail", ctx, "alice@example.com").Return(hashedUser(t, "secret1"), nil).Once()
	_, err := svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)
	_, err = svc.Login(ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.On("GetByEmail", ctx, "alice@example.com").Return(inactive, nil).Once()
	_, err = svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	users, revoked, svc := newAuthFixture()
	ctx := context.Background()
	users.On("GetByEmail", ctx, mock.Anything).Return(hashedUser(t, "secret1"), nil)

	res, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	t.Run("revoked", func(t *testing.T) {
		revoked.On("IsRevoked", ctx, mock.Anything).Return(true, nil).Once()
		_, err := svc.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()
		_, err := svc.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID:           "u1",
			RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString([]byte("other"))
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, forged)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_Logout_RevokesUntilExpiry(t *testing.T) {
	_, revoked, svc := newAuthFixture()
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	claims := &Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
	}}
	revoked.On("Revoke", ctx, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 29*time.Minute && ttl <= 30*time.Minute
	})).Return(nil).Once()

	require.NoError(t, svc.Logout(ctx, claims))
	assert.ErrorIs(t, svc.Logout(ctx, nil), ErrUnauthorized)
	revoked.AssertExpectations(t)
}

func TestAuthService_Profile(t *testing.T) {
	users, _, svc := newAuthFixture()
	ctx := context.Background()
	users.On("GetByID", ctx, "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
