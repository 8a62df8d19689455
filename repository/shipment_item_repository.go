package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// ShipmentItemRepositoryImpl implements ShipmentItemRepository
type ShipmentItemRepositoryImpl struct {
	*BaseRepository[models.ShipmentItem, models.ShipmentItemFilter]
}

// NewShipmentItemRepository creates a new repository for shipment lines
func NewShipmentItemRepository(db *gorm.DB) ShipmentItemRepository {
	return &ShipmentItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ShipmentItem, models.ShipmentItemFilter](db),
	}
}

// ListByShipment returns the lines of a shipment with their parts preloaded
func (r *ShipmentItemRepositoryImpl) ListByShipment(ctx context.Context, shipmentID uint) ([]*models.ShipmentItem, error) {
	db := r.getDB(ctx)

	var items []*models.ShipmentItem
	err := db.Preload("Part").
		Where("shipment_id = ?", shipmentID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipment items: %w", err)
	}
	return items, nil
}

// DeleteByShipment removes all lines of a draft shipment before re-submit
func (r *ShipmentItemRepositoryImpl) DeleteByShipment(ctx context.Context, shipmentID uint) error {
	db := r.getDB(ctx)

	err := db.Where("shipment_id = ?", shipmentID).Delete(&models.ShipmentItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete shipment items: %w", err)
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ShipmentItemRepositoryImpl) applyFilter(db *gorm.DB, filter models.ShipmentItemFilter) *gorm.DB {
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

// ByFilter retrieves shipment lines based on filter criteria
func (r *ShipmentItemRepositoryImpl) ByFilter(ctx context.Context, filter models.ShipmentItemFilter, orderBy string, limit, offset int) ([]*models.ShipmentItem, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShipmentItem{}), filter)

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

	var items []*models.ShipmentItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find shipment items by filter: %w", err)
	}
	return items, nil
}

// Count returns the number of shipment lines matching the filter
func (r *ShipmentItemRepositoryImpl) Count(ctx context.Context, filter models.ShipmentItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ShipmentItem{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count shipment items: %w", err)
	}
	return count, nil
}

// Exists checks if any shipment line matching the filter exists
func (r *ShipmentItemRepositoryImpl) Exists(ctx context.Context, filter models.ShipmentItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
