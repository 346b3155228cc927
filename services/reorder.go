package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewVendorSentinel is the vendor choice meaning "use the typed-in new vendor name"
const NewVendorSentinel = "new_vendor"

// DeliveryDateLayout is the accepted delivery date format
const DeliveryDateLayout = "2006-01-02"

// ReorderRequest is the submitted reorder form
type ReorderRequest struct {
	MaterialID    uint
	Quantity      string
	VendorName    string
	NewVendorName string
	DeliveryDate  string
}

// ReorderStats are counted over every material at or below its threshold, before search and filter
type ReorderStats struct {
	Total      int64 `json:"total_reorder_materials"`
	LowStock   int64 `json:"low_stock_materials_count"`
	OutOfStock int64 `json:"out_of_stock_materials_count"`
}

// ReorderService finds materials that need replenishing and places reorders
type ReorderService struct {
	db       *gorm.DB
	logger   *zap.Logger
	activity *ActivityService
}

// NewReorderService creates a reorder service
func NewReorderService(db *gorm.DB, logger *zap.Logger) *ReorderService {
	return &ReorderService{db: db, logger: logger, activity: NewActivityService(db, logger)}
}

func needsReorder(db *gorm.DB) *gorm.DB {
	return db.Where("quantity <= threshold")
}

// Candidates lists materials at or below threshold, lowest quantity first.
// filter is out_of_stock (quantity <= 0) or low_stock (quantity > 0).
func (s *ReorderService) Candidates(ctx context.Context, search, filter string) ([]MaterialCard, error) {
	query := s.db.WithContext(ctx).Model(&models.Material{}).Scopes(needsReorder)
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(search))
	}
	switch strings.TrimSpace(filter) {
	case FilterOutOfStock:
		query = query.Where("quantity <= ?", 0)
	case FilterLowStock:
		query = query.Where("quantity > ?", 0)
	}

	var materials []models.Material
	if err := query.Preload("Vendors").Order("quantity").Order("id").Find(&materials).Error; err != nil {
		return nil, err
	}

	cards := make([]MaterialCard, len(materials))
	for i, m := range materials {
		cards[i] = MaterialCard{Material: m, StockLevel: ComputeStockLevel(m.Quantity, m.Threshold, m.MaxQuantity)}
	}
	return cards, nil
}

// Stats counts reorder candidates
func (s *ReorderService) Stats(ctx context.Context) (ReorderStats, error) {
	var stats ReorderStats
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Material{}).Scopes(needsReorder)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := base().Where("quantity > ?", 0).Count(&stats.LowStock).Error; err != nil {
		return stats, err
	}
	if err := base().Where("quantity <= ?", 0).Count(&stats.OutOfStock).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// PlaceReorder resolves or creates the vendor, links it to the material when needed and
// records a pending reorder. The vendor, link and reorder are written in one transaction.
func (s *ReorderService) PlaceReorder(ctx context.Context, req ReorderRequest) (*models.Reorder, []Notice, error) {
	var (
		notices  []Notice
		material models.Material
		vendor   models.Vendor
		reorder  models.Reorder
		quantity decimal.Decimal
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The material is resolved before any input is checked
		if err := tx.First(&material, req.MaterialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "Material", ID: req.MaterialID}
			}
			return err
		}

		var err error
		if quantity, err = parseDecimal(req.Quantity, "Order quantity"); err != nil {
			return err
		}
		if !quantity.IsPositive() {
			return invalid("Order quantity must be greater than zero.")
		}

		deliveryDate, err := time.Parse(DeliveryDateLayout, strings.TrimSpace(req.DeliveryDate))
		if err != nil {
			return invalid("Delivery date must be in YYYY-MM-DD format.")
		}

		vendorName := req.VendorName
		if vendorName == NewVendorSentinel {
			vendorName = strings.TrimSpace(req.NewVendorName)
			if vendorName == "" {
				return invalid("New vendor name cannot be empty.")
			}
		}
		if strings.TrimSpace(vendorName) == "" {
			return invalid("Vendor is required.")
		}

		created, err := getOrCreateVendor(tx, vendorName, &vendor)
		if err != nil {
			return err
		}

		var links int64
		if err := tx.Table("material_vendors").
			Where("material_id = ? AND vendor_id = ?", material.ID, vendor.ID).
			Count(&links).Error; err != nil {
			return err
		}
		if links == 0 {
			if err := tx.Model(&material).Association("Vendors").Append(&vendor); err != nil {
				return fmt.Errorf("failed to link vendor: %w", err)
			}
			if created {
				notices = append(notices, notice(NoticeInfo, "New vendor '%s' added and linked to %s", vendor.Name, material.Name))
			} else {
				notices = append(notices, notice(NoticeWarning, "%s was not previously linked to %s. Now linked.", vendor.Name, material.Name))
			}
		}

		reorder = models.Reorder{
			MaterialID:   material.ID,
			VendorID:     vendor.ID,
			Quantity:     quantity,
			DeliveryDate: deliveryDate,
			Status:       models.ReorderStatusPending,
		}
		return tx.Create(&reorder).Error
	})
	if err != nil {
		return nil, nil, err
	}

	summary := fmt.Sprintf("Reorder placed: %s %s of %s from %s", quantity.String(), material.Unit, material.Name, vendor.Name)
	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityReorderCreated,
		Description:  summary,
		ReorderID:    &reorder.ID,
		MaterialID:   &material.ID,
	})

	reorder.Material = material
	reorder.Vendor = vendor
	return &reorder, append(notices, Notice{Level: NoticeSuccess, Message: summary}), nil
}

// getOrCreateVendor loads the vendor named exactly name, creating it when absent.
// It reports whether the vendor was created.
func getOrCreateVendor(tx *gorm.DB, name string, vendor *models.Vendor) (bool, error) {
	err := tx.Where("name = ?", name).First(vendor).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	*vendor = models.Vendor{Name: name}
	if err := tx.Create(vendor).Error; err != nil {
		return false, fmt.Errorf("failed to create vendor: %w", err)
	}
	return true, nil
}

