package domain

import "github.com/bwmarrin/snowflake"

type Collection struct {
	ID                snowflake.ID  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title             string        `gorm:"type:varchar(255);not null" json:"title"`
	FeaturedProductID *snowflake.ID `gorm:"column:featured_product_id;index" json:"featured_product,omitempty"`
}

func (Collection) TableName() string { return "collections" }

// CollectionWithCount is a collection row annotated with the number of products it owns.
type CollectionWithCount struct {
	Collection
	ProductsCount int64 `gorm:"column:products_count"`
}
