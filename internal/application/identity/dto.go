package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
)

// LoginRequest contains the credentials for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	TokenType   string       `json:"tokenType"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest contains input for creating a user
type CreateUserRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	Email    string     `json:"email" binding:"required,email"`
	Username string     `json:"username" binding:"required,min=3,max=50"`
	Password string     `json:"password" binding:"required,min=6"`
	Mobile   string     `json:"mobile" binding:"omitempty,len=10,numeric"`
	Role     string     `json:"role" binding:"required,role"`
	SiteID   *uuid.UUID `json:"siteId"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Mobile      string     `json:"mobile,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	SiteID      *uuid.UUID `json:"siteId,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserListFilter represents filter options for user listings
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,role"`
	SiteID   string `form:"siteId" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// ToUserResponse converts a domain user to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Username:    u.Username,
		Mobile:      u.Mobile,
		Role:        u.Role.String(),
		Status:      string(u.Status),
		SiteID:      u.SiteID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
