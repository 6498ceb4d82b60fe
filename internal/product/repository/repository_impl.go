package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

var orderingColumns = map[string]string{
	"unit_price":  "p.unit_price",
	"last_update": "p.last_update",
	"title":       "p.title",
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, title, slug, description, unit_price, inventory, last_update, collection_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.UnitPrice,
		product.Inventory,
		product.LastUpdate,
		product.CollectionID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, slug, description, unit_price, inventory, last_update, collection_id
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.ProductWithCollection, error) {
	var items []domain.ProductWithCollection
	stmt := applyFilter(db.WithContext(ctx).
		Table("products AS p").
		Select("p.id, p.title, p.slug, p.description, p.unit_price, p.inventory, p.last_update, p.collection_id, c.title AS collection_title").
		Joins("JOIN collections c ON c.id = p.collection_id"), filter)

	stmt = option.WithOrdering(filter.Ordering, orderingColumns).Apply(stmt)
	stmt = option.ApplyPagination(page).Apply(stmt)

	if err := stmt.Order("p.id ASC").Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Table("products AS p"), filter)
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET title = ?, slug = ?, description = ?, unit_price = ?, inventory = ?, last_update = ?, collection_id = ?
		 WHERE id = ?`,
		product.Title,
		product.Slug,
		product.Description,
		product.UnitPrice,
		product.Inventory,
		product.LastUpdate,
		product.CollectionID,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id).Error
}

func (r *repo) CountOrderItems(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("order_items").
		Where("product_id = ?", id).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ClearFeatured(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE collections SET featured_product_id = NULL WHERE featured_product_id = ?`,
		id,
	).Error
}

func (r *repo) ClearInventory(ctx context.Context, db *gorm.DB, ids []snowflake.ID, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET inventory = 0, last_update = ? WHERE id IN ?`,
		now,
		ids,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) CollectionExists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Table("collections").
		Where("id = ?", id).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.CollectionID != nil {
		stmt = stmt.Where("p.collection_id = ?", *filter.CollectionID)
	}
	if filter.UnitPriceGT != nil {
		stmt = stmt.Where("p.unit_price > ?", *filter.UnitPriceGT)
	}
	if filter.UnitPriceLT != nil {
		stmt = stmt.Where("p.unit_price < ?", *filter.UnitPriceLT)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := option.Contains(search)
		stmt = stmt.Where("(LOWER(p.title) LIKE ? ESCAPE '!' OR LOWER(COALESCE(p.description, '')) LIKE ? ESCAPE '!')", like, like)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.TitleSearch)); search != "" {
		stmt = stmt.Where("LOWER(p.title) LIKE ? ESCAPE '!'", option.Contains(search))
	}
	if filter.InventoryBelow != nil {
		stmt = stmt.Where("p.inventory < ?", *filter.InventoryBelow)
	}
	if filter.UpdatedFrom != nil {
		stmt = stmt.Where("p.last_update >= ?", *filter.UpdatedFrom)
	}
	if filter.UpdatedTo != nil {
		stmt = stmt.Where("p.last_update < ?", *filter.UpdatedTo)
	}
	return stmt
}
