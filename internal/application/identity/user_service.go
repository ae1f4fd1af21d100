package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// siteRoles must belong to a site
var siteRoles = map[identity.Role]bool{
	identity.RoleJuniorSiteEngineer: true,
	identity.RoleSiteEngineer:       true,
	identity.RoleSiteStoreIncharge:  true,
}

// UserService handles user management operations
type UserService struct {
	userRepo       identity.UserRepository
	siteRepo       partner.SiteRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, siteRepo partner.SiteRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		siteRepo: siteRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating new user", zap.String("username", req.Username), zap.String("role", req.Role))

	role := identity.Role(req.Role)
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "role is invalid")
	}
	if siteRoles[role] && req.SiteID == nil {
		return nil, shared.NewValidationError("siteId", "siteId is required for role "+req.Role)
	}
	if req.SiteID != nil {
		if _, err := s.siteRepo.FindByID(ctx, *req.SiteID); err != nil {
			return nil, err
		}
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		s.logger.Error("Failed to check user uniqueness", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username or email already exists")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Username, req.Password, role, req.SiteID)
	if err != nil {
		return nil, err
	}
	if err := user.SetMobile(req.Mobile); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, user.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish user events", zap.Error(err))
		}
	}
	user.ClearDomainEvents()

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List lists users
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Role != "" {
		f.Filters["role"] = filter.Role
	}
	if filter.SiteID != "" {
		f.Filters["site_id"] = filter.SiteID
	}

	users, total, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out, total, nil
}
