package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/customer/domain"
	"github.com/smallbiznis/storefront/pkg/db/option"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, first_name, last_name, email, phone, birth_date, membership, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.BirthDate,
		customer.Membership,
		customer.UserID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CustomerWithCount, error) {
	return r.findOne(ctx, db, "c.id = ?", id)
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.CustomerWithCount, error) {
	return r.findOne(ctx, db, "c.user_id = ?", userID)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]domain.CustomerWithCount, error) {
	var customers []domain.CustomerWithCount
	stmt := applyFilter(r.withOrdersCount(ctx, db), filter)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("c.first_name ASC, c.last_name ASC, c.id ASC").
		Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter) (int64, error) {
	var total int64
	stmt := applyFilter(db.WithContext(ctx).Table("customers AS c"), filter)
	if err := stmt.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	if customer == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET first_name = ?, last_name = ?, email = ?, phone = ?, birth_date = ?, membership = ?
		 WHERE id = ?`,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.BirthDate,
		customer.Membership,
		customer.ID,
	).Error
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.CustomerWithCount, error) {
	var rows []domain.CustomerWithCount
	if err := r.withOrdersCount(ctx, db).Where(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// withOrdersCount annotates customers with COUNT(orders) via LEFT JOIN.
func (r *repo) withOrdersCount(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("customers AS c").
		Select("c.id, c.first_name, c.last_name, c.email, c.phone, c.birth_date, c.membership, c.user_id, COUNT(o.id) AS orders_count").
		Joins("LEFT JOIN orders o ON o.customer_id = c.id").
		Group("c.id, c.first_name, c.last_name, c.email, c.phone, c.birth_date, c.membership, c.user_id")
}

func applyFilter(stmt *gorm.DB, filter domain.ListCustomerFilter) *gorm.DB {
	if prefix := strings.ToLower(strings.TrimSpace(filter.NamePrefix)); prefix != "" {
		like := option.StartsWith(prefix)
		stmt = stmt.Where("(LOWER(c.first_name) LIKE ? ESCAPE '!' OR LOWER(c.last_name) LIKE ? ESCAPE '!')", like, like)
	}
	if filter.Membership != "" {
		stmt = stmt.Where("c.membership = ?", filter.Membership)
	}
	return stmt
}
