package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CustomerWithCount, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*CustomerWithCount, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]CustomerWithCount, error)
	Count(ctx context.Context, db *gorm.DB, filter ListCustomerFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
}
