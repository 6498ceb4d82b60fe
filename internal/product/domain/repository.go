package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]ProductWithCollection, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountOrderItems(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	ClearFeatured(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ClearInventory(ctx context.Context, db *gorm.DB, ids []snowflake.ID, now time.Time) (int64, error)
	CollectionExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
