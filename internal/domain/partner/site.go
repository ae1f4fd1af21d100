package partner

import (
	"strings"

	"github.com/sitestock/backend/internal/domain/shared"
)

// SiteHierarchy tells the central warehouse apart from project sites
type SiteHierarchy string

const (
	HierarchyCentralWarehouse SiteHierarchy = "Central Ware House"
	HierarchySite             SiteHierarchy = "Site"
)

// IsValid checks the hierarchy value
func (h SiteHierarchy) IsValid() bool {
	return h == HierarchyCentralWarehouse || h == HierarchySite
}

// Site is a construction site or the central warehouse
type Site struct {
	shared.BaseAggregateRoot
	SiteName    string
	ProjectCode string // Unique
	Address     string
	City        string
	State       string
	StateCode   string
	GSTIN       string
	Email       string
	Hierarchy   SiteHierarchy
}

// SiteDetails carries the descriptive fields of a site
type SiteDetails struct {
	Address   string
	City      string
	State     string
	StateCode string
	GSTIN     string
	Email     string
}

// NewSite creates a new site
func NewSite(name, projectCode string, hierarchy SiteHierarchy, details SiteDetails) (*Site, error) {
	var errs shared.ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs.Add("siteName", "siteName is required")
	}
	if strings.TrimSpace(projectCode) == "" {
		errs.Add("projectCode", "projectCode is required")
	}
	if hierarchy == "" {
		hierarchy = HierarchySite
	}
	if !hierarchy.IsValid() {
		errs.Add("hierarchy", "hierarchy must be 'Central Ware House' or 'Site'")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &Site{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SiteName:          strings.TrimSpace(name),
		ProjectCode:       strings.ToUpper(strings.TrimSpace(projectCode)),
		Address:           details.Address,
		City:              details.City,
		State:             strings.TrimSpace(details.State),
		StateCode:         details.StateCode,
		GSTIN:             strings.ToUpper(details.GSTIN),
		Email:             details.Email,
		Hierarchy:         hierarchy,
	}, nil
}

// IsCentralWarehouse reports whether the site is the warehouse
func (s *Site) IsCentralWarehouse() bool {
	return s.Hierarchy == HierarchyCentralWarehouse
}
