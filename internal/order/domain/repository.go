package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*OrderWithCustomer, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItemWithProduct, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]OrderWithCustomer, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	DeleteItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID, ids []snowflake.ID) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
