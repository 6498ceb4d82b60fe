package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/collection/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

var orderingColumns = map[string]string{
	"title":          "c.title",
	"products_count": "products_count",
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO collections (id, title, featured_product_id) VALUES (?, ?, ?)`,
		collection.ID,
		collection.Title,
		collection.FeaturedProductID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CollectionWithCount, error) {
	var rows []domain.CollectionWithCount
	err := r.withProductsCount(ctx, db).
		Where("c.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.CollectionWithCount, error) {
	var rows []domain.CollectionWithCount
	stmt := applyFilter(r.withProductsCount(ctx, db), filter)
	stmt = option.WithOrdering(filter.Ordering, orderingColumns).Apply(stmt)
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("c.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Table("collections AS c"), filter)
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	if collection == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE collections SET title = ?, featured_product_id = ? WHERE id = ?`,
		collection.Title,
		collection.FeaturedProductID,
		collection.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM collections WHERE id = ?`, id).Error
}

func (r *repo) CountProducts(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("products").
		Where("collection_id = ?", id).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID snowflake.ID) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("products").
		Where("id = ?", productID).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// withProductsCount annotates each collection with COUNT(products) via LEFT JOIN so empty
// collections report zero.
func (r *repo) withProductsCount(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("collections AS c").
		Select("c.id, c.title, c.featured_product_id, COUNT(p.id) AS products_count").
		Joins("LEFT JOIN products p ON p.collection_id = c.id").
		Group("c.id, c.title, c.featured_product_id")
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		stmt = stmt.Where("LOWER(c.title) LIKE ? ESCAPE '!'", option.Contains(search))
	}
	return stmt
}
