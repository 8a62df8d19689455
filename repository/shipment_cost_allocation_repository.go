package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// ShipmentCostAllocationRepositoryImpl implements ShipmentCostAllocationRepository
type ShipmentCostAllocationRepositoryImpl struct {
	*BaseRepository[models.ShipmentCostAllocation, models.ShipmentCostAllocationFilter]
}

// NewShipmentCostAllocationRepository creates a new repository for frozen allocations
func NewShipmentCostAllocationRepository(db *gorm.DB) ShipmentCostAllocationRepository {
	return &ShipmentCostAllocationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ShipmentCostAllocation, models.ShipmentCostAllocationFilter](db),
	}
}

// ListByShipment returns the frozen allocations of a confirmed shipment
func (r *ShipmentCostAllocationRepositoryImpl) ListByShipment(ctx context.Context, shipmentID uint) ([]*models.ShipmentCostAllocation, error) {
	db := r.getDB(ctx)

	var rows []*models.ShipmentCostAllocation
	err := db.Where("shipment_id = ?", shipmentID).
		Order("shipment_item_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipment cost allocations: %w", err)
	}
	return rows, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ShipmentCostAllocationRepositoryImpl) applyFilter(db *gorm.DB, filter models.ShipmentCostAllocationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ShipmentID != nil {
		db = db.Where("shipment_id = ?", *filter.ShipmentID)
	}
	if filter.PartID != nil {
		db = db.Where("part_id = ?", *filter.PartID)
	}
	return db
}

// ByFilter retrieves allocations based on filter criteria
func (r *ShipmentCostAllocationRepositoryImpl) ByFilter(ctx context.Context, filter models.ShipmentCostAllocationFilter, orderBy string, limit, offset int) ([]*models.ShipmentCostAllocation, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShipmentCostAllocation{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ShipmentCostAllocation
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find allocations by filter: %w", err)
	}
	return rows, nil
}

// Count returns the number of allocations matching the filter
func (r *ShipmentCostAllocationRepositoryImpl) Count(ctx context.Context, filter models.ShipmentCostAllocationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShipmentCostAllocation{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return count, nil
}

// Exists checks if any allocation matching the filter exists
func (r *ShipmentCostAllocationRepositoryImpl) Exists(ctx context.Context, filter models.ShipmentCostAllocationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
