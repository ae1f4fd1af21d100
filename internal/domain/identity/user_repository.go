package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByRole returns users holding a role, optionally limited to a site
	FindByRole(ctx context.Context, role Role, siteID *uuid.UUID) ([]*User, error)

	// FindAll returns users with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]*User, int64, error)

	// ExistsByUsernameOrEmail checks the two natural keys
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// UpdateLastLogin persists the login timestamp
	UpdateLastLogin(ctx context.Context, user *User) error
}
