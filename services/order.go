package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/mill-ops-console/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderInput is the submitted order form
type OrderInput struct {
	OrderCode  string
	Quantity   string
	Payment    string
	Status     string
	FabricType string
}

// OrderStats summarize order progress. Pending is everything not completed.
type OrderStats struct {
	Total     int64 `json:"total_orders"`
	Pending   int64 `json:"pending"`
	Shipped   int64 `json:"shipped"`
	Completed int64 `json:"completed"`
}

// OrderService manages client orders
type OrderService struct {
	db       *gorm.DB
	logger   *zap.Logger
	activity *ActivityService
}

// NewOrderService creates an order service
func NewOrderService(db *gorm.DB, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, logger: logger, activity: NewActivityService(db, logger)}
}

// GenerateOrderCode returns a fresh display code such as ORD-1A2B3C4D
func GenerateOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// List searches orders by code, fabric type, quantity or client id and filters by status
func (s *OrderService) List(ctx context.Context, search, status string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Client")

	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}

	if search = strings.TrimSpace(search); search != "" {
		conditions := s.db.Where("LOWER(order_code) LIKE ? ESCAPE '\\'", containsPattern(search)).
			Or("LOWER(fabric_type) LIKE ? ESCAPE '\\'", prefixPattern(search))
		if n, ok := numericTerm(search); ok {
			conditions = conditions.Or("quantity = ?", n).Or("client_id = ?", n)
		}
		query = query.Where(conditions)
	}

	var orders []models.Order
	if err := query.Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Stats counts orders by progress
func (s *OrderService) Stats(ctx context.Context) (OrderStats, error) {
	var stats OrderStats
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Total, db.Model(&models.Order{})},
		{&stats.Pending, db.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCompleted)},
		{&stats.Shipped, db.Model(&models.Order{}).Where("status = ?", models.OrderStatusShipped)},
		{&stats.Completed, db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Create adds an order for a client. A blank code is generated and a blank status starts at sample_preparing.
func (s *OrderService) Create(ctx context.Context, clientID uint, input OrderInput) (*models.Order, []Notice, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Entity: "Client", ID: clientID}
		}
		return nil, nil, err
	}

	order := &models.Order{ClientID: client.ID, Status: models.OrderStatusSamplePreparing}
	if err := applyOrderInput(order, input); err != nil {
		return nil, nil, err
	}

	order.OrderCode = strings.TrimSpace(input.OrderCode)
	if order.OrderCode == "" {
		order.OrderCode = GenerateOrderCode()
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("order_code = ?", order.OrderCode).Count(&existing).Error; err != nil {
		return nil, nil, err
	}
	if existing > 0 {
		return nil, nil, invalid("Order %s already exists.", order.OrderCode)
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityOrderCreated,
		Description:  fmt.Sprintf("New order created: #%s for %s", order.OrderCode, client.Name),
		OrderID:      &order.ID,
	})

	order.Client = client
	return order, []Notice{notice(NoticeSuccess, "Order %s added successfully for %s!", order.OrderCode, client.Name)}, nil
}

// Update edits quantity, total price, status and fabric type.
// The total price may not drop below what has already been paid.
func (s *OrderService) Update(ctx context.Context, id uint, input OrderInput) (*models.Order, []Notice, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := applyOrderInput(order, input); err != nil {
		return nil, nil, err
	}

	paid := ComputeBalance(order.Payment, order.Invoices).TotalPaid
	if order.Payment.LessThan(paid) {
		return nil, nil, invalid("Order total cannot be less than the amount already paid ($%s).", money(paid))
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityOrderUpdated,
		Description:  fmt.Sprintf("Order updated: #%s status changed to %s", order.OrderCode, order.Status),
		OrderID:      &order.ID,
	})

	return order, []Notice{notice(NoticeSuccess, "Order %s updated successfully.", order.OrderCode)}, nil
}

// Delete removes an order and its invoices
func (s *OrderService) Delete(ctx context.Context, id uint) ([]Notice, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityOrderDeleted,
		Description:  fmt.Sprintf("Order deleted: #%s", order.OrderCode),
		OrderID:      &order.ID,
	})

	return []Notice{notice(NoticeSuccess, "Order %s deleted successfully.", order.OrderCode)}, nil
}

func (s *OrderService) find(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Client").Preload("Invoices").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Order", ID: id}
		}
		return nil, err
	}
	return &order, nil
}

// applyOrderInput validates input and copies it onto o only when every field is valid.
// A blank status keeps the current one.
func applyOrderInput(o *models.Order, input OrderInput) error {
	quantity, err := strconv.Atoi(strings.TrimSpace(input.Quantity))
	if err != nil {
		return &ValidationError{Code: CodeInvalidNumber, Message: "Quantity must be a whole number."}
	}
	if quantity <= 0 {
		return invalid("Quantity must be greater than zero.")
	}

	payment, err := parseAmount(input.Payment, "Payment must be a number.", "Payment")
	if err != nil {
		return err
	}
	if payment.IsNegative() {
		return invalid("Payment cannot be negative.")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = o.Status
	}
	if !models.IsValidOrderStatus(status) {
		return invalid("Select a valid order status.")
	}

	o.Quantity = quantity
	o.Payment = payment
	o.Status = status
	o.FabricType = strings.TrimSpace(input.FabricType)
	return nil
}
