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
	"gorm.io/gorm/clause"
)

// MaterialInput is the submitted material form. Numbers arrive as text.
type MaterialInput struct {
	Name        string
	Quantity    string
	Unit        string
	Threshold   string
	MaxQuantity string
}

// MaterialCard is a material with its derived stock level
type MaterialCard struct {
	models.Material
	StockLevel
}

// InventoryStats are counted over all materials regardless of search or filter
type InventoryStats struct {
	Total      int64 `json:"total_materials"`
	InStock    int64 `json:"in_stock"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// VendorRef is the id/name pair returned by the material vendors lookup
type VendorRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// InventoryService manages materials and their stock levels
type InventoryService struct {
	db       *gorm.DB
	logger   *zap.Logger
	activity *ActivityService
}

// NewInventoryService creates an inventory service
func NewInventoryService(db *gorm.DB, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, logger: logger, activity: NewActivityService(db, logger)}
}

// List returns materials whose name contains search, narrowed by a stock filter
func (s *InventoryService) List(ctx context.Context, search, filter string) ([]MaterialCard, error) {
	query := s.db.WithContext(ctx).Model(&models.Material{})
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(search))
	}

	var materials []models.Material
	if err := query.Scopes(StockFilterScope(filter)).Order("id").Find(&materials).Error; err != nil {
		return nil, err
	}

	cards := make([]MaterialCard, len(materials))
	for i, m := range materials {
		cards[i] = MaterialCard{Material: m, StockLevel: ComputeStockLevel(m.Quantity, m.Threshold, m.MaxQuantity)}
	}
	return cards, nil
}

// Stats counts materials per stock filter
func (s *InventoryService) Stats(ctx context.Context) (InventoryStats, error) {
	var stats InventoryStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Material{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	counts := []struct {
		filter string
		dest   *int64
	}{
		{FilterInStock, &stats.InStock},
		{FilterLowStock, &stats.LowStock},
		{FilterOutOfStock, &stats.OutOfStock},
	}
	for _, c := range counts {
		if err := db.Model(&models.Material{}).Scopes(StockFilterScope(c.filter)).Count(c.dest).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Create adds a material
func (s *InventoryService) Create(ctx context.Context, input MaterialInput) (*models.Material, []Notice, error) {
	material := &models.Material{}
	if err := applyMaterialInput(material, input); err != nil {
		return nil, nil, err
	}

	if err := s.db.WithContext(ctx).Create(material).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to add material: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityMaterialCreated,
		Description:  fmt.Sprintf("New material added: %s", material.Name),
		MaterialID:   &material.ID,
	})

	return material, []Notice{notice(NoticeSuccess, "Material '%s' added successfully.", material.Name)}, nil
}

// Update replaces the editable fields of a material. Invalid input leaves the stored row untouched.
func (s *InventoryService) Update(ctx context.Context, id uint, input MaterialInput) (*models.Material, []Notice, error) {
	material, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if err := applyMaterialInput(material, input); err != nil {
		return nil, nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(material).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update material: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityMaterialUpdated,
		Description:  fmt.Sprintf("Material updated: %s", material.Name),
		MaterialID:   &material.ID,
	})

	return material, []Notice{notice(NoticeSuccess, "Material updated successfully.")}, nil
}

// Delete removes a material together with its reorders and vendor links
func (s *InventoryService) Delete(ctx context.Context, id uint) ([]Notice, error) {
	material, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_id = ?", material.ID).Delete(&models.Reorder{}).Error; err != nil {
			return err
		}
		if err := tx.Model(material).Association("Vendors").Clear(); err != nil {
			return err
		}
		return tx.Delete(material).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete material: %w", err)
	}

	s.activity.Record(ctx, models.ActivityLog{
		ActivityType: models.ActivityMaterialDeleted,
		Description:  fmt.Sprintf("Material deleted: %s", material.Name),
		MaterialID:   &material.ID,
	})

	return []Notice{notice(NoticeSuccess, "Material deleted successfully.")}, nil
}

// Vendors lists the vendors linked to a material
func (s *InventoryService) Vendors(ctx context.Context, materialID uint) ([]VendorRef, error) {
	material, err := s.find(ctx, materialID)
	if err != nil {
		return nil, err
	}

	refs := []VendorRef{}
	err = s.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Select("vendors.id, vendors.name").
		Joins("JOIN material_vendors ON material_vendors.vendor_id = vendors.id").
		Where("material_vendors.material_id = ?", material.ID).
		Order("vendors.id").
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *InventoryService) find(ctx context.Context, id uint) (*models.Material, error) {
	var material models.Material
	if err := s.db.WithContext(ctx).First(&material, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Material", ID: id}
		}
		return nil, err
	}
	return &material, nil
}

// applyMaterialInput validates input and copies it onto m only when every field is valid
func applyMaterialInput(m *models.Material, input MaterialInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return invalid("Material name is required.")
	}

	var quantity, threshold, maxQuantity decimal.Decimal
	for _, f := range []struct {
		raw   string
		field string
		dest  *decimal.Decimal
	}{
		{input.Quantity, "Quantity", &quantity},
		{input.Threshold, "Threshold", &threshold},
		{input.MaxQuantity, "Max quantity", &maxQuantity},
	} {
		d, err := parseDecimal(f.raw, f.field)
		if err != nil {
			return err
		}
		*f.dest = d
	}

	switch {
	case quantity.IsNegative():
		return invalid("Quantity cannot be negative.")
	case threshold.IsNegative():
		return invalid("Threshold cannot be negative.")
	case maxQuantity.LessThan(decimal.NewFromInt(1)):
		return invalid("Max quantity must be at least 1.")
	}

	m.Name = name
	m.Quantity = quantity
	m.Unit = strings.TrimSpace(input.Unit)
	m.Threshold = threshold
	m.MaxQuantity = maxQuantity
	return nil
}
