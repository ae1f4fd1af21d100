package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/auth"
	"github.com/sitestock/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.Role, siteID *uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, role, siteID)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockSiteRepository is a mock implementation of partner.SiteRepository
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Site), args.Error(1)
}

func (m *MockSiteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Site, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*partner.Site), args.Get(1).(int64), args.Error(2)
}

func (m *MockSiteRepository) FindAllSites(ctx context.Context) ([]*partner.Site, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*partner.Site), args.Error(1)
}

func (m *MockSiteRepository) Create(ctx context.Context, site *partner.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func newTestAuthService(repo *MockUserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "test",
	})
	return NewAuthService(repo, jwtService, zap.NewNop())
}

func newActiveUser(t *testing.T, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Center Store", "csi@example.com", "csi", password, identity.RoleCenterStoreIncharge, nil)
	require.NoError(t, err)
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, "secret123")

	repo.On("FindByUsername", mock.Anything, "csi").Return(user, nil)
	repo.On("UpdateLastLogin", mock.Anything, user).Return(nil)

	result, err := svc.Login(context.Background(), LoginRequest{Username: " CSI ", Password: "secret123"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, "center store incharge", result.User.Role)
	assert.NotNil(t, user.LastLoginAt)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, "secret123")

	repo.On("FindByUsername", mock.Anything, "csi").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "csi", Password: "nope"})

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)

	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, shared.NewNotFoundError("User", "ghost"))

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever"})

	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_Login_Inactive(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo)
	user := newActiveUser(t, "secret123")
	user.Deactivate()

	repo.On("FindByUsername", mock.Anything, "csi").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "csi", Password: "secret123"})

	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("site role needs a site", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), new(MockSiteRepository), zap.NewNop())

		_, err := svc.Create(ctx, CreateUserRequest{
			Name: "JSE", Email: "jse@example.com", Username: "jse", Password: "secret123",
			Role: string(identity.RoleJuniorSiteEngineer),
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), new(MockSiteRepository), zap.NewNop())

		_, err := svc.Create(ctx, CreateUserRequest{
			Name: "X", Email: "x@example.com", Username: "xx", Password: "secret123", Role: "wizard",
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects duplicate username or email", func(t *testing.T) {
		users := new(MockUserRepository)
		svc := NewUserService(users, new(MockSiteRepository), zap.NewNop())
		users.On("ExistsByUsernameOrEmail", mock.Anything, "pm", "pm@example.com").Return(true, nil)

		_, err := svc.Create(ctx, CreateUserRequest{
			Name: "PM", Email: "pm@example.com", Username: "pm", Password: "secret123",
			Role: string(identity.RolePurchaseManager),
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("creates a site user", func(t *testing.T) {
		users := new(MockUserRepository)
		sites := new(MockSiteRepository)
		svc := NewUserService(users, sites, zap.NewNop())
		siteID := uuid.New()

		sites.On("FindByID", mock.Anything, siteID).Return(&partner.Site{}, nil)
		users.On("ExistsByUsernameOrEmail", mock.Anything, "ssi", "ssi@example.com").Return(false, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		resp, err := svc.Create(ctx, CreateUserRequest{
			Name: "Site Store", Email: "ssi@example.com", Username: "ssi", Password: "secret123",
			Mobile: "9876543210", Role: string(identity.RoleSiteStoreIncharge), SiteID: &siteID,
		})

		require.NoError(t, err)
		assert.Equal(t, "ssi", resp.Username)
		assert.Equal(t, "9876543210", resp.Mobile)
		assert.Equal(t, &siteID, resp.SiteID)
		users.AssertExpectations(t)
	})
}
