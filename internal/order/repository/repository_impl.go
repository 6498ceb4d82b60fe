package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, placed_at, payment_status, customer_id) VALUES (?, ?, ?, ?)`,
		order.ID,
		order.PlacedAt,
		order.PaymentStatus,
		order.CustomerID,
	).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.OrderItem) error {
	for _, item := range items {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?, ?)`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.OrderWithCustomer, error) {
	var rows []domain.OrderWithCustomer
	if err := r.withCustomer(ctx, db).Where("o.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderItemWithProduct, error) {
	var items []domain.OrderItemWithProduct
	err := db.WithContext(ctx).
		Table("order_items AS i").
		Select("i.id, i.order_id, i.product_id, i.quantity, i.unit_price, p.title AS product_title").
		Joins("JOIN products p ON p.id = i.product_id").
		Where("i.order_id = ?", orderID).
		Order("i.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.OrderWithCustomer, error) {
	var rows []domain.OrderWithCustomer
	stmt := applyFilter(r.withCustomer(ctx, db), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("o.placed_at DESC, o.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Table("orders AS o"), filter)
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET payment_status = ? WHERE id = ?`,
		status,
		id,
	).Error
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.OrderItem) error {
	if item == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE order_items SET product_id = ?, quantity = ?, unit_price = ? WHERE order_id = ? AND id = ?`,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.OrderID,
		item.ID,
	).Error
}

func (r *repo) DeleteItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_items WHERE order_id = ? AND id IN ?`,
		orderID,
		ids,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM order_items WHERE order_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM orders WHERE id = ?`, id).Error
}

func (r *repo) withCustomer(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.placed_at, o.payment_status, o.customer_id, c.first_name AS customer_first_name, c.last_name AS customer_last_name").
		Joins("JOIN customers c ON c.id = o.customer_id")
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.CustomerID != nil {
		stmt = stmt.Where("o.customer_id = ?", *filter.CustomerID)
	}
	return stmt
}
