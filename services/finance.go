package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Payment classes of an order. Every order falls in exactly one.
const (
	ClassPaid    = "paid"
	ClassPartial = "partial"
	ClassPending = "pending"
)

// Balance is what has been paid toward an order and what is still due
type Balance struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Class     string          `json:"class"`
}

// ComputeBalance sums the invoices of an order against its total price
func ComputeBalance(payment decimal.Decimal, invoices []models.Invoice) Balance {
	paid := decimal.Zero
	for _, inv := range invoices {
		paid = paid.Add(inv.Amount)
	}
	remaining := payment.Sub(paid)

	return Balance{TotalPaid: paid, Remaining: remaining, Class: classify(paid, remaining)}
}

// classify checks paid first so a zero-priced order with no payment is paid, not pending
func classify(paid, remaining decimal.Decimal) string {
	switch {
	case !remaining.IsPositive():
		return ClassPaid
	case paid.IsPositive():
		return ClassPartial
	default:
		return ClassPending
	}
}

// FinanceRow is one order on the finance dashboard
type FinanceRow struct {
	Order    models.Order     `json:"order"`
	Invoices []models.Invoice `json:"invoices"`
	Balance
}

// FinanceStats are counted over the rows left after search and filter
type FinanceStats struct {
	Total  int `json:"total_invoices"`
	Paid   int `json:"paid_invoices"`
	Unpaid int `json:"unpaid_invoices"`
}

// FinanceService reconciles invoices against order totals
type FinanceService struct {
	db       *gorm.DB
	logger   *zap.Logger
	activity *ActivityService
}

// NewFinanceService creates a finance service
func NewFinanceService(db *gorm.DB, logger *zap.Logger) *FinanceService {
	return &FinanceService{db: db, logger: logger, activity: NewActivityService(db, logger)}
}

// Rows returns every order with its balance. search matches client name, client id or order code;
// class keeps only paid, partial or pending orders.
func (s *FinanceService) Rows(ctx context.Context, search, class string) ([]FinanceRow, FinanceStats, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.*").
		Joins("JOIN clients ON clients.id = orders.client_id").
		Preload("Client").
		Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("invoices.id") })

	if search = strings.TrimSpace(search); search != "" {
		pattern := containsPattern(search)
		query = query.Where(
			"LOWER(clients.name) LIKE ? ESCAPE '\\' OR CAST(clients.id AS TEXT) LIKE ? ESCAPE '\\' OR LOWER(orders.order_code) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}

	// Fetch matching orders with their invoices
	var orders []models.Order
	if err := query.Order("orders.id").Find(&orders).Error; err != nil {
		return nil, FinanceStats{}, err
	}

	// Compute balances, filter by class and count paid orders
	class = strings.TrimSpace(class)
	rows := make([]FinanceRow, 0, len(orders))
	var stats FinanceStats
	for _, o := range orders {
		balance := ComputeBalance(o.Payment, o.Invoices)
		if class != "" && balance.Class != class {
			continue
		}
		rows = append(rows, FinanceRow{Order: o, Invoices: o.Invoices, Balance: balance})

		stats.Total++
		if balance.Class == ClassPaid {
			stats.Paid++
		}
	}
	stats.Unpaid = stats.Total - stats.Paid

	return rows, stats, nil
}

// RecordPayment replaces every invoice of the order with a single cash invoice for newTotalPaid.
// A blank amount means zero.
//
// Two concurrent calls for the same order are not serialized; the last commit wins.
func (s *FinanceService) RecordPayment(ctx context.Context, orderID uint, newTotalPaid string) (*Balance, []Notice, error) {
	amount := decimal.Zero
	if strings.TrimSpace(newTotalPaid) != "" {
		var err error
		if amount, err = parseAmount(newTotalPaid, "Paid amount must be a number.", "Paid amount"); err != nil {
			return nil, nil, err
		}
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if amount.IsNegative() {
		return nil, nil, invalid("Paid amount cannot be negative.")
	}
	if amount.GreaterThan(order.Payment) {
		return nil, nil, invalid("Paid amount cannot exceed total invoice amount ($%s).", money(order.Payment))
	}

	invoice := models.Invoice{OrderID: order.ID, Amount: amount, PaymentMethod: models.PaymentMethodCash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityPaymentRecorded,
		Description:  fmt.Sprintf("Payment recorded: $%s for order #%s", money(amount), order.OrderCode),
		OrderID:      &order.ID,
	})

	balance := ComputeBalance(order.Payment, []models.Invoice{invoice})
	return &balance, []Notice{notice(NoticeSuccess, "Payment updated successfully.")}, nil
}

// UpdateInvoice changes the amount and payment method of one invoice.
// The invoices of the order still may not add up to more than the order total.
func (s *FinanceService) UpdateInvoice(ctx context.Context, invoiceID uint, amount, method string) (*models.Invoice, []Notice, error) {
	value, err := parseAmount(amount, "Invoice amount must be a number.", "Invoice amount")
	if err != nil {
		return nil, nil, err
	}
	if value.IsNegative() {
		return nil, nil, invalid("Invoice amount cannot be negative.")
	}

	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	var others []models.Invoice
	if err := s.db.WithContext(ctx).Where("order_id = ? AND id <> ?", invoice.OrderID, invoice.ID).Find(&others).Error; err != nil {
		return nil, nil, err
	}
	if ComputeBalance(invoice.Order.Payment, others).TotalPaid.Add(value).GreaterThan(invoice.Order.Payment) {
		return nil, nil, invalid("Paid amount cannot exceed total invoice amount ($%s).", money(invoice.Order.Payment))
	}

	err = s.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
		"amount":         value,
		"payment_method": models.NormalizePaymentMethod(strings.TrimSpace(method)),
	}).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	updated, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityInvoiceUpdated,
		Description:  fmt.Sprintf("Invoice INV-%d updated: $%s for order #%s", updated.ID, money(value), updated.Order.OrderCode),
		OrderID:      &updated.OrderID,
	})

	return updated, []Notice{notice(NoticeSuccess, "Invoice updated successfully.")}, nil
}

// DeleteInvoice removes one invoice
func (s *FinanceService) DeleteInvoice(ctx context.Context, invoiceID uint) ([]Notice, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Invoice{}, invoice.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityInvoiceDeleted,
		Description:  fmt.Sprintf("Invoice INV-%d deleted for order #%s", invoice.ID, invoice.Order.OrderCode),
		OrderID:      &invoice.OrderID,
	})

	return []Notice{notice(NoticeSuccess, "Invoice deleted successfully.")}, nil
}

// OrderBalance loads an order's invoices and computes its balance
func (s *FinanceService) OrderBalance(ctx context.Context, orderID uint) (*Balance, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	balance := ComputeBalance(order.Payment, order.Invoices)
	return &balance, nil
}

func (s *FinanceService) findOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Client").Preload("Invoices").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Order", ID: id}
		}
		return nil, err
	}
	return &order, nil
}

func (s *FinanceService) findInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.WithContext(ctx).Preload("Order").Preload("Order.Client").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Invoice", ID: id}
		}
		return nil, err
	}
	return &invoice, nil
}
