package identity

import (
	"context"
	"strings"

	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(user *identity.User) (*auth.Token, error)
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo identity.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", username))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")
	}
	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", username))
		return nil, shared.NewDomainError(shared.CodeForbidden, "Account has been deactivated")
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeInternal, "Failed to generate authentication token")
	}

	user.RecordLogin()
	if err := s.userRepo.UpdateLastLogin(ctx, user); err != nil {
		// a missed timestamp must not fail the login
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserResponse(user),
	}, nil
}
