package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root
type UserModel struct {
	AggregateModel
	Name         string     `gorm:"type:varchar(200);not null"`
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	Username     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Mobile       string     `gorm:"type:varchar(20)"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	Role         string     `gorm:"type:varchar(20);not null;index"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"`
	SiteID       *uuid.UUID `gorm:"type:uuid;index"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Username:          m.Username,
		Mobile:            m.Mobile,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Status:            identity.UserStatus(m.Status),
		SiteID:            m.SiteID,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.Username = u.Username
	m.Mobile = u.Mobile
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
	m.Status = string(u.Status)
	m.SiteID = u.SiteID
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
