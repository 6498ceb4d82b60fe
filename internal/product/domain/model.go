package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
)

type Product struct {
	ID           snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	Slug         string          `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(6,2);not null;check:chk_products_unit_price,unit_price > 0" json:"unit_price"`
	Inventory    int             `gorm:"not null;default:0;check:chk_products_inventory,inventory >= 0" json:"inventory"`
	LastUpdate   time.Time       `gorm:"column:last_update;not null" json:"last_update"`
	CollectionID snowflake.ID    `gorm:"column:collection_id;not null;index" json:"collection"`

	Collection *collectiondomain.Collection `gorm:"foreignKey:CollectionID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Product) TableName() string { return "products" }

// ProductWithCollection carries the owning collection's title for list views.
type ProductWithCollection struct {
	Product
	CollectionTitle string `gorm:"column:collection_title"`
}

const (
	InventoryLow = "Low"
	InventoryOK  = "OK"

	DefaultLowInventoryThreshold = 10
)

// InventoryStatus classifies stock; it is derived on read and never stored.
func InventoryStatus(inventory, threshold int) string {
	if threshold <= 0 {
		threshold = DefaultLowInventoryThreshold
	}
	if inventory < threshold {
		return InventoryLow
	}
	return InventoryOK
}
