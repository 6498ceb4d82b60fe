package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/collection/domain"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
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
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("collection.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}

	featured, err := s.resolveFeaturedProduct(ctx, s.db, req.FeaturedProduct)
	if err != nil {
		return nil, err
	}

	c := &domain.Collection{
		ID:                s.genID.Generate(),
		Title:             title,
		FeaturedProductID: featured,
	}
	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "collection", "create")

	resp := toResponse(&domain.CollectionWithCount{Collection: *c})
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	collectionID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, collectionID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Search:   strings.TrimSpace(req.Search),
		Ordering: strings.TrimSpace(req.Ordering),
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
		resp.Items = append(resp.Items, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	collectionID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *domain.CollectionWithCount
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, collectionID)
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
		if req.FeaturedProduct != nil {
			featured, err := s.resolveFeaturedProduct(ctx, tx, req.FeaturedProduct)
			if err != nil {
				return err
			}
			item.FeaturedProductID = featured
		}

		if err := s.repo.Update(ctx, tx, &item.Collection); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "collection", "update")

	resp := toResponse(updated)
	return &resp, nil
}

// Delete refuses to remove a collection that still owns products.
func (s *Service) Delete(ctx context.Context, id string) error {
	collectionID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, collectionID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		products, err := s.repo.CountProducts(ctx, tx, collectionID)
		if err != nil {
			return err
		}
		if products > 0 {
			return domain.ErrCollectionNotEmpty
		}
		if err := s.repo.Delete(ctx, tx, collectionID); err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrCollectionNotEmpty
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCatalogMutation(ctx, "collection", "delete")
	s.log.Info("collection deleted", zap.String("collection_id", collectionID.String()))
	return nil
}

func (s *Service) resolveFeaturedProduct(ctx context.Context, tx *gorm.DB, raw *string) (*snowflake.ID, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	productID, err := snowflake.ParseString(value)
	if err != nil || productID == 0 {
		return nil, domain.ErrInvalidFeaturedProduct
	}
	exists, err := s.repo.ProductExists(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrInvalidFeaturedProduct
	}
	return &productID, nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", domain.ErrInvalidTitle
	}
	return title, nil
}

// parseID treats a malformed path id like an unknown one.
func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func toResponse(c *domain.CollectionWithCount) domain.Response {
	resp := domain.Response{
		ID:            c.ID.String(),
		Title:         c.Title,
		ProductsCount: c.ProductsCount,
	}
	if c.FeaturedProductID != nil {
		featured := c.FeaturedProductID.String()
		resp.FeaturedProduct = &featured
	}
	return resp
}
