package inventory

import (
	"context"

	"github.com/sitestock/backend/internal/domain/inventory"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReportCacheInvalidator drops cached report pages whenever stock moves
type ReportCacheInvalidator struct {
	reports *ReportService
	logger  *zap.Logger
}

// NewReportCacheInvalidator creates a new ReportCacheInvalidator
func NewReportCacheInvalidator(reports *ReportService, logger *zap.Logger) *ReportCacheInvalidator {
	return &ReportCacheInvalidator{reports: reports, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReportCacheInvalidator) EventTypes() []string {
	return []string{inventory.EventTypeStockMoved}
}

// Handle invalidates the report cache
func (h *ReportCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.reports.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate report cache",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*ReportCacheInvalidator)(nil)
