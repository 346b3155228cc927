package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted on an invoice
const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCreditCard   = "credit_card"
	PaymentMethodUPI          = "upi"
	PaymentMethodOther        = "other"
)

var paymentMethods = map[string]bool{
	PaymentMethodCash:         true,
	PaymentMethodBankTransfer: true,
	PaymentMethodCreditCard:   true,
	PaymentMethodUPI:          true,
	PaymentMethodOther:        true,
}

// Invoice is a snapshot of the total amount paid toward an order
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Order         Order           `gorm:"foreignKey:OrderID" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"not null" json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// NormalizePaymentMethod returns method when it is known and cash otherwise
func NormalizePaymentMethod(method string) string {
	if paymentMethods[method] {
		return method
	}
	return PaymentMethodCash
}
