package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListFilter struct {
	Search   string
	Ordering string
}

// ListRequest lists collections; Ordering is a comma separated "field" / "-field" list
// over title and products_count, falling back to id order.
type ListRequest struct {
	Search   string
	Ordering string
	Page     pagination.Pagination
}

type ListResponse struct {
	Total int64
	Items []Response
}

type CreateRequest struct {
	Title           string
	FeaturedProduct *string
}

// UpdateRequest applies only the non-nil fields. An empty FeaturedProduct clears it.
type UpdateRequest struct {
	ID              string
	Title           *string
	FeaturedProduct *string
}

type Response struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	FeaturedProduct *string `json:"featured_product"`
	ProductsCount   int64   `json:"products_count"`
}

const MaxTitleLength = 255

var (
	ErrInvalidTitle           = errors.New("invalid_title")
	ErrInvalidFeaturedProduct = errors.New("invalid_featured_product")
	ErrNotFound               = errors.New("not_found")
	ErrCollectionNotEmpty     = errors.New("collection_not_empty")
)
