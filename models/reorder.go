package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reorder statuses
const (
	ReorderStatusPending   = "pending"
	ReorderStatusOrdered   = "ordered"
	ReorderStatusDelivered = "delivered"
	ReorderStatusCancelled = "cancelled"
)

// Reorder is a request to replenish a material from a vendor
type Reorder struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	MaterialID   uint            `gorm:"not null;index" json:"material_id"`
	Material     Material        `gorm:"foreignKey:MaterialID" json:"material"`
	VendorID     uint            `gorm:"not null;index" json:"vendor_id"`
	Vendor       Vendor          `gorm:"foreignKey:VendorID" json:"vendor"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"quantity"`
	DeliveryDate time.Time       `gorm:"not null" json:"delivery_date"`
	Status       string          `gorm:"not null;index" json:"status"` // pending, ordered, delivered, cancelled
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Reorder model
func (Reorder) TableName() string {
	return "reorders"
}
