package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/sitestock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSiteRepository implements partner.SiteRepository using GORM
type GormSiteRepository struct {
	db *gorm.DB
}

// NewGormSiteRepository creates a new GormSiteRepository
func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

// FindByID finds a site by its ID
func (r *GormSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Site, error) {
	var model models.SiteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists sites
func (r *GormSiteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Site, int64, error) {
	query := whereSearch(r.db.WithContext(ctx).Model(&models.SiteModel{}), filter.Search,
		"site_name", "project_code", "city", "state")
	if h, ok := filter.Filters["hierarchy"]; ok {
		query = query.Where("hierarchy = ?", h)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SiteModel
	if err := paginate(query, filter, SiteSortFields, "site_name ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return sitesToDomain(rows), total, nil
}

// FindAllSites returns every site ordered by name
func (r *GormSiteRepository) FindAllSites(ctx context.Context) ([]*partner.Site, error) {
	var rows []models.SiteModel
	if err := r.db.WithContext(ctx).Order("site_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return sitesToDomain(rows), nil
}

// Create inserts a site; the project code is unique
func (r *GormSiteRepository) Create(ctx context.Context, site *partner.Site) error {
	return translateError(r.db.WithContext(ctx).Create(models.SiteModelFromDomain(site)).Error, "project code")
}

func sitesToDomain(rows []models.SiteModel) []*partner.Site {
	out := make([]*partner.Site, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormSiteRepository implements SiteRepository
var _ partner.SiteRepository = (*GormSiteRepository)(nil)
