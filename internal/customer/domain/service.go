package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type ListCustomerRequest struct {
	// NamePrefix matches the start of first or last name, case-insensitively.
	NamePrefix string
	Membership string
	Page       pagination.Pagination
}

type ListCustomerFilter struct {
	NamePrefix string
	Membership string
}

type ListCustomerResponse struct {
	Total     int64
	Customers []Response
}

type CreateCustomerRequest struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	BirthDate  *string
	Membership *string
	UserID     *snowflake.ID
}

// UpdateCustomerRequest applies only the non-nil fields.
type UpdateCustomerRequest struct {
	ID         string
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	BirthDate  *string
	Membership *string
}

type Response struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	BirthDate   *string `json:"birth_date"`
	Membership  string  `json:"membership"`
	UserID      *string `json:"user_id"`
	OrdersCount int64   `json:"orders_count"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (*Response, error)
	List(context.Context, ListCustomerRequest) (*ListCustomerResponse, error)
	GetByID(context.Context, string) (*Response, error)
	GetByUserID(context.Context, snowflake.ID) (*Response, error)
	Update(context.Context, UpdateCustomerRequest) (*Response, error)
}

const MaxNameLength = 255

var (
	ErrInvalidFirstName  = errors.New("invalid_first_name")
	ErrInvalidLastName   = errors.New("invalid_last_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidBirthDate  = errors.New("invalid_birth_date")
	ErrInvalidMembership = errors.New("invalid_membership")
	ErrUserHasCustomer   = errors.New("user_has_customer")
	ErrNotFound          = errors.New("not_found")
)
