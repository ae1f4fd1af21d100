package inventory

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/partner"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReportCachePrefix prefixes every cached report page
const ReportCachePrefix = "report:inventory:"

// exportPageSize is the page size used when walking the report for export
const exportPageSize = 100

// ReportRenderer writes a report document
type ReportRenderer interface {
	Render(w io.Writer, report *InventoryReportResponse) error
}

// ReportService composes the item by site inventory matrix
type ReportService struct {
	reports  inventory.ReportRepository
	records  inventory.RecordRepository
	sites    partner.SiteRepository
	cache    appshared.Cache
	cacheTTL time.Duration
	renderer ReportRenderer
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	reports inventory.ReportRepository,
	records inventory.RecordRepository,
	sites partner.SiteRepository,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports: reports,
		records: records,
		sites:   sites,
		cache:   appshared.NoopCache{},
		logger:  logger,
	}
}

// SetCache enables caching of report pages for ttl
func (s *ReportService) SetCache(cache appshared.Cache, ttl time.Duration) {
	if cache == nil || ttl <= 0 {
		s.cache = appshared.NoopCache{}
		return
	}
	s.cache = cache
	s.cacheTTL = ttl
}

// SetRenderer sets the document renderer used by Export
func (s *ReportService) SetRenderer(renderer ReportRenderer) {
	s.renderer = renderer
}

// Build returns one page of the report
func (s *ReportService) Build(ctx context.Context, filter ReportFilter) (*InventoryReportResponse, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	key := reportCacheKey(f)
	var cached InventoryReportResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	sites, err := s.reportSites(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.buildPage(ctx, f, sites)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
	return report, nil
}

// Export renders every row matching the filter's search and sort
func (s *ReportService) Export(ctx context.Context, filter ReportFilter, w io.Writer) error {
	if s.renderer == nil {
		return shared.NewDomainError(shared.CodeInternal, "report export is not configured")
	}
	sites, err := s.reportSites(ctx)
	if err != nil {
		return err
	}

	full := &InventoryReportResponse{Sites: sites, Rows: make([]ReportRow, 0)}
	f := shared.Filter{
		Page:     1,
		PageSize: exportPageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	for {
		page, err := s.buildPage(ctx, f, sites)
		if err != nil {
			return err
		}
		full.Rows = append(full.Rows, page.Rows...)
		full.Total = page.Total
		if len(page.Rows) < f.PageSize || int64(len(full.Rows)) >= page.Total {
			break
		}
		f.Page++
	}
	full.Page = 1
	full.PageSize = len(full.Rows)

	if err := s.renderer.Render(w, full); err != nil {
		return fmt.Errorf("render inventory report: %w", err)
	}
	return nil
}

// Invalidate drops cached report pages
func (s *ReportService) Invalidate(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, ReportCachePrefix)
}

func (s *ReportService) reportSites(ctx context.Context) ([]ReportSiteColumn, error) {
	all, err := s.sites.FindAllSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	cols := make([]ReportSiteColumn, 0, len(all))
	for _, site := range all {
		if site.IsCentralWarehouse() {
			continue
		}
		cols = append(cols, ReportSiteColumn{SiteID: site.ID, SiteName: site.SiteName})
	}
	return cols, nil
}

func (s *ReportService) buildPage(ctx context.Context, f shared.Filter, sites []ReportSiteColumn) (*InventoryReportResponse, error) {
	items, total, err := s.reports.ItemPage(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
	}

	inHand := make(map[uuid.UUID]map[uuid.UUID]decimal.Decimal, len(items))
	issued := make(map[uuid.UUID]map[uuid.UUID]decimal.Decimal, len(items))
	if len(ids) > 0 {
		records, err := s.records.FindByItemIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.Location.Scope != inventory.ScopeSite {
				continue
			}
			if inHand[r.ItemID] == nil {
				inHand[r.ItemID] = make(map[uuid.UUID]decimal.Decimal)
			}
			inHand[r.ItemID][r.Location.SiteID] = r.InHand
		}

		totals, err := s.reports.IssuedTotals(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, t := range totals {
			if issued[t.ItemID] == nil {
				issued[t.ItemID] = make(map[uuid.UUID]decimal.Decimal)
			}
			issued[t.ItemID][t.SiteID] = issued[t.ItemID][t.SiteID].Add(t.Quantity)
		}
	}

	rows := make([]ReportRow, len(items))
	for i, it := range items {
		row := ReportRow{
			ItemID:      it.ItemID,
			ItemCode:    it.ItemCode,
			Description: it.Description,
			Category:    it.Category,
			SubCategory: it.SubCategory,
			UOM:         it.UOM,
			Center:      it.Center,
			Sites:       make([]ReportSiteCell, len(sites)),
			TotalInHand: it.Center,
		}
		for j, site := range sites {
			cell := ReportSiteCell{
				SiteID: site.SiteID,
				InHand: inHand[it.ItemID][site.SiteID],
				Issued: issued[it.ItemID][site.SiteID],
			}
			row.Sites[j] = cell
			row.TotalInHand = row.TotalInHand.Add(cell.InHand)
			row.TotalIssued = row.TotalIssued.Add(cell.Issued)
		}
		rows[i] = row
	}

	return &InventoryReportResponse{
		Sites:    sites,
		Rows:     rows,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

func reportCacheKey(f shared.Filter) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s", ReportCachePrefix, f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search)
}
