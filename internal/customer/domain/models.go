package domain

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	MembershipBronze = "B"
	MembershipSilver = "S"
	MembershipGold   = "G"
)

// MembershipLabels maps stored membership codes to display names.
var MembershipLabels = map[string]string{
	MembershipBronze: "Bronze",
	MembershipSilver: "Silver",
	MembershipGold:   "Gold",
}

type Customer struct {
	ID         snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FirstName  string          `gorm:"column:first_name;type:varchar(255);not null;index:idx_customers_name,priority:1" json:"first_name"`
	LastName   string          `gorm:"column:last_name;type:varchar(255);not null;index:idx_customers_name,priority:2" json:"last_name"`
	Email      *string         `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Phone      *string         `gorm:"column:phone;type:varchar(255)" json:"phone,omitempty"`
	BirthDate  *datatypes.Date `gorm:"column:birth_date" json:"birth_date,omitempty"`
	Membership string          `gorm:"column:membership;type:varchar(1);not null;default:'B'" json:"membership"`
	UserID     *snowflake.ID   `gorm:"column:user_id;uniqueIndex" json:"user_id,omitempty"`
}

func (Customer) TableName() string { return "customers" }

// CustomerWithCount is a customer row annotated with the number of orders placed.
type CustomerWithCount struct {
	Customer
	OrdersCount int64 `gorm:"column:orders_count"`
}

func ValidMembership(code string) bool {
	_, ok := MembershipLabels[code]
	return ok
}
