package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// ShipmentRepositoryImpl implements ShipmentRepository
type ShipmentRepositoryImpl struct {
	*BaseRepository[models.Shipment, models.ShipmentFilter]
}

// NewShipmentRepository creates a new repository for import shipments
func NewShipmentRepository(db *gorm.DB) ShipmentRepository {
	return &ShipmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Shipment, models.ShipmentFilter](db),
	}
}

// ByUUID retrieves a shipment by its UUID
func (r *ShipmentRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	db := r.getDB(ctx)

	var shipment models.Shipment
	err := db.Where("uuid = ?", id).First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find shipment by UUID: %w", err)
	}

	return &shipment, nil
}

// ByUUIDWithItems retrieves a shipment with its lines preloaded
func (r *ShipmentRepositoryImpl) ByUUIDWithItems(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	db := r.getDB(ctx)

	var shipment models.Shipment
	err := db.Preload("Items").Preload("Items.Part").
		Where("uuid = ?", id).First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find shipment with items: %w", err)
	}

	return &shipment, nil
}

// ByReference retrieves a shipment by its import reference
func (r *ShipmentRepositoryImpl) ByReference(ctx context.Context, reference string) (*models.Shipment, error) {
	db := r.getDB(ctx)

	var shipment models.Shipment
	err := db.Where("reference = ?", reference).First(&shipment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find shipment by reference: %w", err)
	}

	return &shipment, nil
}

// UpdateStatus transitions a shipment conditionally on its current status.
// The WHERE clause on the old status makes concurrent confirmations settle
// to exactly one winner; the caller checks the returned bool.
func (r *ShipmentRepositoryImpl) UpdateStatus(ctx context.Context, shipmentID uint, from, to models.ShipmentStatus, by *string, at *time.Time) (bool, error) {
	db := r.getDB(ctx)

	updates := map[string]any{
		"status":     to.String(),
		"updated_at": utils.UTCNow(),
	}
	if by != nil {
		updates["confirmed_by"] = *by
	}
	if at != nil {
		updates["confirmed_at"] = *at
	}

	result := db.Model(&models.Shipment{}).
		Where("id = ? AND status = ?", shipmentID, from.String()).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update shipment status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ShipmentRepositoryImpl) applyFilter(db *gorm.DB, filter models.ShipmentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Reference != nil {
		db = db.Where("reference = ?", *filter.Reference)
	}
	if filter.Supplier != nil {
		db = db.Where("supplier = ?", *filter.Supplier)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", filter.Status.String())
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves shipments based on filter criteria
func (r *ShipmentRepositoryImpl) ByFilter(ctx context.Context, filter models.ShipmentFilter, orderBy string, limit, offset int) ([]*models.Shipment, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Shipment{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var shipments []*models.Shipment
	if err := query.Find(&shipments).Error; err != nil {
		return nil, fmt.Errorf("failed to find shipments by filter: %w", err)
	}
	return shipments, nil
}

// Count returns the number of shipments matching the filter
func (r *ShipmentRepositoryImpl) Count(ctx context.Context, filter models.ShipmentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Shipment{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count shipments: %w", err)
	}
	return count, nil
}

// Exists checks if any shipment matching the filter exists
func (r *ShipmentRepositoryImpl) Exists(ctx context.Context, filter models.ShipmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
