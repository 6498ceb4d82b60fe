package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
)

const (
	PaymentStatusPending  = "P"
	PaymentStatusComplete = "C"
	PaymentStatusFailed   = "F"
)

var PaymentStatusLabels = map[string]string{
	PaymentStatusPending:  "Pending",
	PaymentStatusComplete: "Complete",
	PaymentStatusFailed:   "Failed",
}

type Order struct {
	ID            snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	PlacedAt      time.Time    `gorm:"column:placed_at;not null"`
	PaymentStatus string       `gorm:"column:payment_status;type:varchar(1);not null;default:'P'"`
	CustomerID    snowflake.ID `gorm:"column:customer_id;not null;index"`

	Customer *customerdomain.Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
}

func (Order) TableName() string { return "orders" }

// OrderItem.UnitPrice is the product price captured when the line was added.
type OrderItem struct {
	ID        snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	OrderID   snowflake.ID    `gorm:"column:order_id;not null;index"`
	ProductID snowflake.ID    `gorm:"column:product_id;not null;index"`
	Quantity  int             `gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(6,2);not null"`

	Order   *Order                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Product *productdomain.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

func (OrderItem) TableName() string { return "order_items" }

type OrderWithCustomer struct {
	Order
	CustomerFirstName string `gorm:"column:customer_first_name"`
	CustomerLastName  string `gorm:"column:customer_last_name"`
}

type OrderItemWithProduct struct {
	OrderItem
	ProductTitle string `gorm:"column:product_title"`
}

func ValidPaymentStatus(code string) bool {
	_, ok := PaymentStatusLabels[code]
	return ok
}
