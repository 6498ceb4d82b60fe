package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, collection *Collection) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CollectionWithCount, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]CollectionWithCount, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, collection *Collection) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountProducts(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error)
}
