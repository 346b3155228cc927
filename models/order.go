package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses, in production sequence
const (
	OrderStatusSamplePreparing  = "sample_preparing"
	OrderStatusProduction       = "production"
	OrderStatusQualityChecking  = "quality_checking"
	OrderStatusReadyForShipment = "ready_for_shipment"
	OrderStatusShipped          = "shipped"
	OrderStatusCompleted        = "completed"
)

// OrderStatuses lists every valid order status
var OrderStatuses = []string{
	OrderStatusSamplePreparing,
	OrderStatusProduction,
	OrderStatusQualityChecking,
	OrderStatusReadyForShipment,
	OrderStatusShipped,
	OrderStatusCompleted,
}

// Order represents a client order
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderCode  string          `gorm:"column:order_code;uniqueIndex;not null" json:"order_id"` // display code, e.g. ORD-1A2B3C4D
	ClientID   uint            `gorm:"not null;index" json:"client_id"`
	Client     Client          `gorm:"foreignKey:ClientID" json:"client"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Payment    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"payment"` // total price of the order
	Status     string          `gorm:"not null;index" json:"status"`
	FabricType string          `json:"fabric_type"`
	Invoices   []Invoice       `gorm:"foreignKey:OrderID" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsValidOrderStatus reports whether status is one of OrderStatuses
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}
