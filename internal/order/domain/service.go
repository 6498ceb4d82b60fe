package domain

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type Service interface {
	Place(ctx context.Context, req PlaceRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	UpdatePaymentStatus(ctx context.Context, id string, status string) (*Response, error)
	ReplaceItems(ctx context.Context, id string, items []ItemInput) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListFilter struct {
	CustomerID *snowflake.ID
}

type ListRequest struct {
	CustomerID string
	Page       pagination.Pagination
}

type ListResponse struct {
	Total  int64
	Orders []Response
}

// ItemInput describes one order line. ID is set only when editing an existing line.
type ItemInput struct {
	ID       *string
	Product  string
	Quantity int
}

type PlaceRequest struct {
	CustomerID string
	Items      []ItemInput
}

type ItemResponse struct {
	ID           string `json:"id"`
	Product      string `json:"product"`
	ProductTitle string `json:"product_title,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	TotalPrice   string `json:"total_price"`
}

type Response struct {
	ID            string         `json:"id"`
	PlacedAt      time.Time      `json:"placed_at"`
	PaymentStatus string         `json:"payment_status"`
	Customer      string         `json:"customer"`
	CustomerName  string         `json:"customer_name,omitempty"`
	Items         []ItemResponse `json:"items,omitempty"`
	TotalPrice    string         `json:"total_price,omitempty"`
}

// MaxQuantity is the largest quantity one order line can hold, merged lines included.
const MaxQuantity = math.MaxInt32

var (
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidItems         = errors.New("invalid_items")
	ErrInvalidItem          = errors.New("invalid_item")
	ErrInvalidProduct       = errors.New("invalid_product")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrNotFound             = errors.New("not_found")
)
