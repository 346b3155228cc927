package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material represents a raw-good inventory item tracked against a reorder threshold
type Material struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;index" json:"name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Unit        string          `gorm:"not null" json:"unit"`
	Threshold   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"threshold"`
	MaxQuantity decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"max_quantity"`
	Vendors     []Vendor        `gorm:"many2many:material_vendors;" json:"vendors,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}

// Vendor supplies one or more materials. Name is the identity used for get-or-create.
type Vendor struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"uniqueIndex;not null" json:"name"`
	Materials []Material `gorm:"many2many:material_vendors;" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Vendor model
func (Vendor) TableName() string {
	return "vendors"
}
