package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/catalog"
	"github.com/sitestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemService manages the material catalog
type ItemService struct {
	txScope        appshared.TransactionScope
	itemRepo       catalog.ItemRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(txScope appshared.TransactionScope, itemRepo catalog.ItemRepository, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		txScope:  txScope,
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create adds items in one batch. Items without a code receive consecutive
// ITEM numbers; a duplicate code anywhere fails the whole batch.
func (s *ItemService) Create(ctx context.Context, req CreateItemsRequest) ([]ItemResponse, error) {
	items := make([]*catalog.Item, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	missing := 0
	for i, in := range req.Items {
		item, err := catalog.NewItem(in.ItemCode, in.attributes())
		if err != nil {
			return nil, err
		}
		if item.ItemCode == "" {
			missing++
		} else {
			if seen[item.ItemCode] {
				return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Duplicate item code %s in request", item.ItemCode))
			}
			seen[item.ItemCode] = true
		}
		items[i] = item
	}

	var events appshared.EventCollector
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		events.Reset()
		if missing > 0 {
			codes, err := repos.Sequences().NextN(ctx, shared.KindItem, missing)
			if err != nil {
				return err
			}
			next := 0
			for _, item := range items {
				if item.ItemCode != "" {
					continue
				}
				if err := item.AssignCode(codes[next]); err != nil {
					return err
				}
				next++
			}
		}
		if err := repos.Items().Create(ctx, items...); err != nil {
			return err
		}
		for _, item := range items {
			events.Collect(item)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Item batch rejected", zap.Int("count", len(items)), zap.Error(err))
		return nil, err
	}

	events.Publish(ctx, s.eventPublisher)
	s.logger.Info("Items created", zap.Int("count", len(items)))

	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, nil
}

// Update replaces the attributes of an item
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Update(req.attributes()); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetByCode retrieves an item by its code
func (s *ItemService) GetByCode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// List lists items ordered by code unless the filter sorts otherwise
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()
	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}

	items, total, err := s.itemRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ToItemResponse(item)
	}
	return out, total, nil
}
