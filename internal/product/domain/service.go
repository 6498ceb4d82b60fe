package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Replace(ctx context.Context, id string, req CreateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	ClearInventory(ctx context.Context, ids []string) (int64, error)
}

type ListFilter struct {
	CollectionID   *snowflake.ID
	UnitPriceGT    *decimal.Decimal
	UnitPriceLT    *decimal.Decimal
	Search         string
	TitleSearch    string
	InventoryBelow *int
	UpdatedFrom    *time.Time
	UpdatedTo      *time.Time
	Ordering       string
}

type ListRequest struct {
	CollectionID string
	UnitPriceGT  string
	UnitPriceLT  string
	// Search matches title or description; TitleSearch matches title only.
	Search       string
	TitleSearch  string
	LowInventory bool
	LastUpdate   string
	Ordering     string
	Page         pagination.Pagination
}

type ListResponse struct {
	Total int64
	Items []Response
}

type CreateRequest struct {
	Title       string
	Slug        *string
	Description *string
	UnitPrice   *decimal.Decimal
	Inventory   *int
	Collection  string
}

// UpdateRequest applies only the non-nil fields.
type UpdateRequest struct {
	ID          string
	Title       *string
	Slug        *string
	Description *string
	UnitPrice   *decimal.Decimal
	Inventory   *int
	Collection  *string
}

type Response struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     *string   `json:"description"`
	UnitPrice       string    `json:"unit_price"`
	Inventory       int       `json:"inventory"`
	InventoryStatus string    `json:"inventory_status"`
	LastUpdate      time.Time `json:"last_update"`
	Collection      string    `json:"collection"`
	CollectionTitle string    `json:"collection_title,omitempty"`
}

const MaxTitleLength = 255

// MaxUnitPrice is the largest value a decimal(6,2) column holds.
var MaxUnitPrice = decimal.RequireFromString("9999.99")

var (
	ErrInvalidTitle            = errors.New("invalid_title")
	ErrInvalidSlug             = errors.New("invalid_slug")
	ErrInvalidUnitPrice        = errors.New("invalid_unit_price")
	ErrInvalidInventory        = errors.New("invalid_inventory")
	ErrInvalidCollection       = errors.New("invalid_collection")
	ErrInvalidUnitPriceFilter  = errors.New("invalid_unit_price_filter")
	ErrInvalidLastUpdateFilter = errors.New("invalid_last_update_filter")
	ErrInvalidSelection        = errors.New("invalid_selection")
	ErrNotFound                = errors.New("not_found")
	ErrProductProtected        = errors.New("product_protected")
)
