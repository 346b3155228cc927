package services

import (
	"context"

	"github.com/kendall-kelly/mill-ops-console/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DashboardSummary is the main dashboard: headline counts and the latest activity
type DashboardSummary struct {
	TotalClients     int64           `json:"total_clients"`
	TotalOrders      int64           `json:"total_orders"`
	TotalMaterials   int64           `json:"total_materials"`
	LowStock         int64           `json:"low_stock_materials"`
	OutOfStock       int64           `json:"out_of_stock_materials"`
	TotalInvoices    int64           `json:"total_invoices"`
	UnpaidInvoices   int64           `json:"unpaid_invoices"`
	RecentActivities []ActivityEntry `json:"recent_activities"`
}

// DashboardService builds the main dashboard
type DashboardService struct {
	db       *gorm.DB
	logger   *zap.Logger
	activity *ActivityService
}

// NewDashboardService creates a dashboard service
func NewDashboardService(db *gorm.DB, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, logger: logger, activity: NewActivityService(db, logger)}
}

// Summary counts clients, orders, materials needing attention and unpaid orders.
// Low stock here means at or below threshold, matching the reorder list.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{RecentActivities: []ActivityEntry{}}
	db := s.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&summary.TotalClients, db.Model(&models.Client{})},
		{&summary.TotalOrders, db.Model(&models.Order{})},
		{&summary.TotalMaterials, db.Model(&models.Material{})},
		{&summary.LowStock, db.Model(&models.Material{}).Where("quantity <= threshold")},
		{&summary.OutOfStock, db.Model(&models.Material{}).Where("quantity <= ?", 0)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var orders []models.Order
	if err := db.Preload("Invoices").Find(&orders).Error; err != nil {
		return nil, err
	}
	summary.TotalInvoices = int64(len(orders))
	for _, o := range orders {
		if ComputeBalance(o.Payment, o.Invoices).Remaining.IsPositive() {
			summary.UnpaidInvoices++
		}
	}

	logs, err := s.activity.Recent(ctx, RecentActivityLimit)
	if err != nil {
		return nil, err
	}
	for _, log := range logs {
		summary.RecentActivities = append(summary.RecentActivities, DecorateActivity(log))
	}

	return summary, nil
}
