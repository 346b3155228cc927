package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock statuses shown on material cards
const (
	StockDanger  = "danger"
	StockWarning = "warning"
	StockFill    = "fill"
)

// Stock filters accepted by the inventory dashboard
const (
	FilterOutOfStock = "out_of_stock"
	FilterLowStock   = "low_stock"
	FilterInStock    = "in_stock"
)

var (
	hundred       = decimal.NewFromInt(100)
	warningFactor = decimal.RequireFromString("1.5")
)

// StockLevel is derived from a material on every read and never stored
type StockLevel struct {
	Status      string `json:"status"`
	BarWidth    int    `json:"bar_width"`
	BarClass    string `json:"bar_class"`
	ShowWarning bool   `json:"show_warning"`
}

// ComputeStockLevel classifies quantity against threshold and computes the fill bar.
// A max quantity below 1 is treated as 1.
func ComputeStockLevel(quantity, threshold, maxQuantity decimal.Decimal) StockLevel {
	var status string
	switch {
	case quantity.LessThanOrEqual(decimal.Zero), quantity.LessThanOrEqual(threshold):
		status = StockDanger
	case quantity.LessThan(threshold.Mul(warningFactor)):
		status = StockWarning
	default:
		status = StockFill
	}

	divisor := decimal.Max(maxQuantity, decimal.NewFromInt(1))
	width := quantity.Mul(hundred).Div(divisor).Floor().IntPart()
	if width > 100 {
		width = 100
	}
	if width < 0 {
		width = 0
	}

	return StockLevel{
		Status:      status,
		BarWidth:    int(width),
		BarClass:    status,
		ShowWarning: quantity.LessThan(threshold),
	}
}

// StockFilterScope narrows a materials query. in_stock includes low_stock materials.
// An unknown filter leaves the query unchanged.
func StockFilterScope(filter string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch filter {
		case FilterOutOfStock:
			return db.Where("quantity = ?", 0)
		case FilterLowStock:
			return db.Where("quantity > ? AND quantity < threshold", 0)
		case FilterInStock:
			return db.Where("quantity > ?", 0)
		}
		return db
	}
}
