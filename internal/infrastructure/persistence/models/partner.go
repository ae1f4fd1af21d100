package models

import (
	"github.com/sitestock/backend/internal/domain/partner"
)

// SiteModel is the persistence model for sites and the central warehouse
type SiteModel struct {
	AggregateModel
	SiteName    string `gorm:"type:varchar(200);not null"`
	ProjectCode string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Address     string `gorm:"type:varchar(500)"`
	City        string `gorm:"type:varchar(100)"`
	State       string `gorm:"type:varchar(100)"`
	StateCode   string `gorm:"type:varchar(10)"`
	GSTIN       string `gorm:"column:gstin;type:varchar(20)"`
	Email       string `gorm:"type:varchar(200)"`
	Hierarchy   string `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (SiteModel) TableName() string {
	return "sites"
}

// ToDomain converts the persistence model to a domain Site
func (m *SiteModel) ToDomain() *partner.Site {
	return &partner.Site{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SiteName:          m.SiteName,
		ProjectCode:       m.ProjectCode,
		Address:           m.Address,
		City:              m.City,
		State:             m.State,
		StateCode:         m.StateCode,
		GSTIN:             m.GSTIN,
		Email:             m.Email,
		Hierarchy:         partner.SiteHierarchy(m.Hierarchy),
	}
}

// SiteModelFromDomain creates a new persistence model from a domain Site
func SiteModelFromDomain(s *partner.Site) *SiteModel {
	m := &SiteModel{
		SiteName:    s.SiteName,
		ProjectCode: s.ProjectCode,
		Address:     s.Address,
		City:        s.City,
		State:       s.State,
		StateCode:   s.StateCode,
		GSTIN:       s.GSTIN,
		Email:       s.Email,
		Hierarchy:   string(s.Hierarchy),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	AggregateModel
	SupplierName  string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(200)"`
	Phone         string `gorm:"type:varchar(20)"`
	Email         string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Address       string `gorm:"type:varchar(500)"`
	City          string `gorm:"type:varchar(100)"`
	State         string `gorm:"type:varchar(100)"`
	GSTIN         string `gorm:"column:gstin;type:varchar(20)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierName:      m.SupplierName,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		City:              m.City,
		State:             m.State,
		GSTIN:             m.GSTIN,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		SupplierName:  s.SupplierName,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		City:          s.City,
		State:         s.State,
		GSTIN:         s.GSTIN,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
