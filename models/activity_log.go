package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Activity types
const (
	ActivityClientCreated   = "client_created"
	ActivityClientUpdated   = "client_updated"
	ActivityClientDeleted   = "client_deleted"
	ActivityOrderCreated    = "order_created"
	ActivityOrderUpdated    = "order_updated"
	ActivityOrderDeleted    = "order_deleted"
	ActivityMaterialCreated = "material_created"
	ActivityMaterialUpdated = "material_updated"
	ActivityMaterialDeleted = "material_deleted"
	ActivityReorderCreated  = "reorder_created"
	ActivityPaymentRecorded = "payment_recorded"
	ActivityInvoiceUpdated  = "invoice_updated"
	ActivityInvoiceDeleted  = "invoice_deleted"
)

// ErrActivityLogImmutable is returned when something tries to rewrite history
var ErrActivityLogImmutable = errors.New("activity log entries are append-only")

// ActivityLog is one entry of the append-only audit trail.
// The entity references are plain ids without constraints so entries outlive the rows they describe.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActivityType string    `gorm:"size:50;not null;index" json:"activity_type"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	UserID       *uint     `gorm:"index" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClientID     *uint     `json:"client_id,omitempty"`
	OrderID      *uint     `json:"order_id,omitempty"`
	MaterialID   *uint     `json:"material_id,omitempty"`
	ReorderID    *uint     `json:"reorder_id,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for the ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// BeforeUpdate rejects any update of an existing entry
func (ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// BeforeDelete rejects deletion of an entry
func (ActivityLog) BeforeDelete(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}
