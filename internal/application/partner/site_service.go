package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
)

// SiteService handles site operations
type SiteService struct {
	siteRepo partner.SiteRepository
}

// NewSiteService creates a new SiteService
func NewSiteService(siteRepo partner.SiteRepository) *SiteService {
	return &SiteService{siteRepo: siteRepo}
}

// Create creates a new site; project codes are unique
func (s *SiteService) Create(ctx context.Context, req CreateSiteRequest) (*SiteResponse, error) {
	site, err := partner.NewSite(req.SiteName, req.ProjectCode, partner.SiteHierarchy(req.Hierarchy), partner.SiteDetails{
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		StateCode: req.StateCode,
		GSTIN:     req.GSTIN,
		Email:     req.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}
	resp := ToSiteResponse(site)
	return &resp, nil
}

// GetByID retrieves a site by ID
func (s *SiteService) GetByID(ctx context.Context, id uuid.UUID) (*SiteResponse, error) {
	site, err := s.siteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSiteResponse(site)
	return &resp, nil
}

// List lists sites
func (s *SiteService) List(ctx context.Context, filter ListFilter) ([]SiteResponse, int64, error) {
	sites, total, err := s.siteRepo.FindAll(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out := make([]SiteResponse, len(sites))
	for i, site := range sites {
		out[i] = ToSiteResponse(site)
	}
	return out, total, nil
}

func toFilter(filter ListFilter) shared.Filter {
	return shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
}
