package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// VehicleModelRepositoryImpl implements VehicleModelRepository
type VehicleModelRepositoryImpl struct {
	*BaseRepository[models.VehicleModel, models.VehicleModelFilter]
}

// NewVehicleModelRepository creates a new repository for vehicle models
func NewVehicleModelRepository(db *gorm.DB) VehicleModelRepository {
	return &VehicleModelRepositoryImpl{
		BaseRepository: NewBaseRepository[models.VehicleModel, models.VehicleModelFilter](db),
	}
}

// ByName retrieves a vehicle model by its commercial name
func (r *VehicleModelRepositoryImpl) ByName(ctx context.Context, name string) (*models.VehicleModel, error) {
	db := r.getDB(ctx)

	var model models.VehicleModel
	err := db.Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vehicle model by name: %w", err)
	}

	return &model, nil
}

// ByUUID retrieves a vehicle model by its UUID
func (r *VehicleModelRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.VehicleModel, error) {
	db := r.getDB(ctx)

	var model models.VehicleModel
	err := db.Where("uuid = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find vehicle model by UUID: %w", err)
	}

	return &model, nil
}

// ListActive returns active vehicle models ordered by name
func (r *VehicleModelRepositoryImpl) ListActive(ctx context.Context) ([]*models.VehicleModel, error) {
	db := r.getDB(ctx)

	var rows []*models.VehicleModel
	err := db.Where("active = ?", true).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active vehicle models: %w", err)
	}
	return rows, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *VehicleModelRepositoryImpl) applyFilter(db *gorm.DB, filter models.VehicleModelFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.Brand != nil {
		db = db.Where("brand = ?", *filter.Brand)
	}
	if filter.Segment != nil {
		db = db.Where("segment = ?", *filter.Segment)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	return db
}

// ByFilter retrieves vehicle models based on filter criteria
func (r *VehicleModelRepositoryImpl) ByFilter(ctx context.Context, filter models.VehicleModelFilter, orderBy string, limit, offset int) ([]*models.VehicleModel, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.VehicleModel{}), filter)

	if orderBy == "" {
		orderBy = "name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.VehicleModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find vehicle models by filter: %w", err)
	}
	return rows, nil
}

// Count returns the number of vehicle models matching the filter
func (r *VehicleModelRepositoryImpl) Count(ctx context.Context, filter models.VehicleModelFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.VehicleModel{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vehicle models: %w", err)
	}
	return count, nil
}

// Exists checks if any vehicle model matching the filter exists
func (r *VehicleModelRepositoryImpl) Exists(ctx context.Context, filter models.VehicleModelFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
