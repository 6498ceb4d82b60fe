package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Catalog *config.CatalogConfigHolder `optional:"true"`
	Metrics *obsmetrics.Metrics         `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	catalog *config.CatalogConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("product.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		clock:   p.Clock,
		catalog: p.Catalog,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	p := &domain.Product{ID: s.genID.Generate()}
	if err := s.assign(ctx, s.db, p, req); err != nil {
		return nil, err
	}
	p.LastUpdate = s.clock.Now()

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		if db.IsForeignKeyErr(err) {
			return nil, domain.ErrInvalidCollection
		}
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "product", "create")

	resp := s.toResponse(p, "")
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item, "")
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}
	page := req.Page.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{Total: total, Items: make([]domain.Response, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, s.toResponse(&items[i].Product, items[i].CollectionTitle))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.Title != nil {
			title, err := normalizeTitle(*req.Title)
			if err != nil {
				return err
			}
			item.Title = title
		}
		if req.Slug != nil {
			value, err := normalizeSlug(*req.Slug)
			if err != nil {
				return err
			}
			item.Slug = value
		}
		if req.Description != nil {
			item.Description = normalizeDescription(req.Description)
		}
		if req.UnitPrice != nil {
			price, err := validateUnitPrice(req.UnitPrice)
			if err != nil {
				return err
			}
			item.UnitPrice = price
		}
		if req.Inventory != nil {
			inventory, err := validateInventory(req.Inventory)
			if err != nil {
				return err
			}
			item.Inventory = inventory
		}
		if req.Collection != nil {
			collectionID, err := s.resolveCollection(ctx, tx, *req.Collection)
			if err != nil {
				return err
			}
			item.CollectionID = collectionID
		}

		item.LastUpdate = s.clock.Now()
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "product", "update")

	resp := s.toResponse(updated, "")
	return &resp, nil
}

// Replace overwrites every writable field; the request is validated like a create.
func (s *Service) Replace(ctx context.Context, id string, req domain.CreateRequest) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var replaced *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if err := s.assign(ctx, tx, item, req); err != nil {
			return err
		}
		item.LastUpdate = s.clock.Now()
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		replaced = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "product", "replace")

	resp := s.toResponse(replaced, "")
	return &resp, nil
}

// Delete is refused while any order item references the product.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		referenced, err := s.repo.CountOrderItems(ctx, tx, productID)
		if err != nil {
			return err
		}
		if referenced > 0 {
			return domain.ErrProductProtected
		}

		if err := s.repo.ClearFeatured(ctx, tx, productID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, productID); err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrProductProtected
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCatalogMutation(ctx, "product", "delete")
	s.log.Info("product deleted", zap.String("product_id", productID.String()))
	return nil
}

func (s *Service) ClearInventory(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrInvalidSelection
	}

	parsed := make([]snowflake.ID, 0, len(ids))
	seen := make(map[snowflake.ID]struct{}, len(ids))
	for _, raw := range ids {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			return 0, domain.ErrInvalidSelection
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		parsed = append(parsed, id)
	}

	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.ClearInventory(ctx, tx, parsed, s.clock.Now())
		if err != nil {
			return err
		}
		updated = count
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordInventoryCleared(ctx, updated)
	s.log.Info("inventory cleared", zap.Int64("count", updated))
	return updated, nil
}

// assign validates a full write and copies it onto p.
func (s *Service) assign(ctx context.Context, tx *gorm.DB, p *domain.Product, req domain.CreateRequest) error {
	title, err := normalizeTitle(req.Title)
	if err != nil {
		return err
	}

	var slugValue string
	if req.Slug == nil || strings.TrimSpace(*req.Slug) == "" {
		slugValue = slug.Make(title)
		if slugValue == "" {
			return domain.ErrInvalidSlug
		}
	} else {
		slugValue, err = normalizeSlug(*req.Slug)
		if err != nil {
			return err
		}
	}

	price, err := validateUnitPrice(req.UnitPrice)
	if err != nil {
		return err
	}
	inventory, err := validateInventory(req.Inventory)
	if err != nil {
		return err
	}
	collectionID, err := s.resolveCollection(ctx, tx, req.Collection)
	if err != nil {
		return err
	}

	p.Title = title
	p.Slug = slugValue
	p.Description = normalizeDescription(req.Description)
	p.UnitPrice = price
	p.Inventory = inventory
	p.CollectionID = collectionID
	return nil
}

func (s *Service) resolveCollection(ctx context.Context, tx *gorm.DB, raw string) (snowflake.ID, error) {
	collectionID, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || collectionID <= 0 {
		return 0, domain.ErrInvalidCollection
	}
	exists, err := s.repo.CollectionExists(ctx, tx, collectionID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, domain.ErrInvalidCollection
	}
	return collectionID, nil
}

func (s *Service) buildFilter(req domain.ListRequest) (domain.ListFilter, error) {
	filter := domain.ListFilter{
		Search:      strings.TrimSpace(req.Search),
		TitleSearch: strings.TrimSpace(req.TitleSearch),
		Ordering:    strings.TrimSpace(req.Ordering),
	}

	if raw := strings.TrimSpace(req.CollectionID); raw != "" {
		collectionID, err := snowflake.ParseString(raw)
		if err != nil {
			return filter, domain.ErrInvalidCollection
		}
		filter.CollectionID = &collectionID
	}
	if raw := strings.TrimSpace(req.UnitPriceGT); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, domain.ErrInvalidUnitPriceFilter
		}
		filter.UnitPriceGT = &value
	}
	if raw := strings.TrimSpace(req.UnitPriceLT); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, domain.ErrInvalidUnitPriceFilter
		}
		filter.UnitPriceLT = &value
	}
	if req.LowInventory {
		threshold := s.lowInventoryThreshold()
		filter.InventoryBelow = &threshold
	}
	if raw := strings.TrimSpace(req.LastUpdate); raw != "" {
		from, to, err := domain.LastUpdateRange(raw, s.clock.Now())
		if err != nil {
			return filter, err
		}
		filter.UpdatedFrom = &from
		filter.UpdatedTo = &to
	}
	return filter, nil
}

func (s *Service) lowInventoryThreshold() int {
	return s.catalog.Get().LowInventoryThreshold
}

func (s *Service) toResponse(p *domain.Product, collectionTitle string) domain.Response {
	return domain.Response{
		ID:              p.ID.String(),
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		UnitPrice:       p.UnitPrice.StringFixed(2),
		Inventory:       p.Inventory,
		InventoryStatus: domain.InventoryStatus(p.Inventory, s.lowInventoryThreshold()),
		LastUpdate:      p.LastUpdate,
		Collection:      p.CollectionID.String(),
		CollectionTitle: collectionTitle,
	}
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", domain.ErrInvalidTitle
	}
	return title, nil
}

func normalizeSlug(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" || len(value) > domain.MaxTitleLength || !slug.IsSlug(value) {
		return "", domain.ErrInvalidSlug
	}
	return value, nil
}

func normalizeDescription(raw *string) *string {
	if raw == nil {
		return nil
	}
	description := strings.TrimSpace(*raw)
	if description == "" {
		return nil
	}
	return &description
}

func validateUnitPrice(price *decimal.Decimal) (decimal.Decimal, error) {
	if price == nil {
		return decimal.Zero, domain.ErrInvalidUnitPrice
	}
	if !price.IsPositive() || price.GreaterThan(domain.MaxUnitPrice) || !price.Equal(price.Round(2)) {
		return decimal.Zero, domain.ErrInvalidUnitPrice
	}
	return *price, nil
}

func validateInventory(inventory *int) (int, error) {
	if inventory == nil || *inventory < 0 {
		return 0, domain.ErrInvalidInventory
	}
	return *inventory, nil
}

// parseID treats a malformed path id like an unknown one.
func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
