package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// User represents a user in the system
// It is the aggregate root for user-related operations
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	Username     string
	Mobile       string
	PasswordHash string
	Role         Role
	Status       UserStatus
	SiteID       *uuid.UUID // Site the user works at; nil for warehouse and office roles
	LastLoginAt  *time.Time
}

// NewUser creates a new active user with a hashed password
func NewUser(name, email, username, password string, role Role, siteID *uuid.UUID) (*User, error) {
	var errs shared.ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "name is required")
	}
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		errs.Add("email", "email is invalid")
	}
	if strings.TrimSpace(username) == "" {
		errs.Add("username", "username is required")
	}
	if len(password) < 6 {
		errs.Add("password", "password must be at least 6 characters")
	}
	if !role.IsValid() {
		errs.Add("role", "role is invalid")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:      string(hash),
		Role:              role,
		Status:            UserStatusActive,
		SiteID:            siteID,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// SetMobile sets a 10 digit mobile number
func (u *User) SetMobile(mobile string) error {
	if mobile != "" && !mobileRegex.MatchString(mobile) {
		return shared.NewValidationError("mobile", "mobile must be 10 digits")
	}
	u.Mobile = mobile
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsActive reports whether the user may log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Deactivate blocks further logins
func (u *User) Deactivate() {
	u.Status = UserStatusInactive
	u.Touch()
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}
