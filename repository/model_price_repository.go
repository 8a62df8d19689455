package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModelPriceRepositoryImpl implements ModelPriceRepository
type ModelPriceRepositoryImpl struct {
	*BaseRepository[models.ModelPrice, models.ModelPriceFilter]
}

// NewModelPriceRepository creates a new repository for stored model quotes
func NewModelPriceRepository(db *gorm.DB) ModelPriceRepository {
	return &ModelPriceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ModelPrice, models.ModelPriceFilter](db),
	}
}

// ByPair retrieves the stored quote for a (vehicle model, plan) pair
func (r *ModelPriceRepositoryImpl) ByPair(ctx context.Context, vehicleModelID, rentalPlanID uint) (*models.ModelPrice, error) {
	db := r.getDB(ctx)

	var price models.ModelPrice
	err := db.Where("vehicle_model_id = ? AND rental_plan_id = ?", vehicleModelID, rentalPlanID).
		First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find model price by pair: %w", err)
	}

	return &price, nil
}

// ListWithRelations returns all stored quotes with model and plan preloaded
func (r *ModelPriceRepositoryImpl) ListWithRelations(ctx context.Context) ([]*models.ModelPrice, error) {
	db := r.getDB(ctx)

	var rows []*models.ModelPrice
	err := db.Preload("VehicleModel").Preload("RentalPlan").
		Order("vehicle_model_id ASC, rental_plan_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list model prices: %w", err)
	}
	return rows, nil
}

// UpsertComputed inserts or refreshes the computed figures of a pair.
// The manual override and its metadata survive a recompute.
func (r *ModelPriceRepositoryImpl) UpsertComputed(ctx context.Context, price *models.ModelPrice) error {
	db := r.getDB(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vehicle_model_id"}, {Name: "rental_plan_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"computed_price", "total_monthly_cost", "margin", "target_margin", "computed_at", "updated_at",
		}),
	}).Create(price).Error
	if err != nil {
		return fmt.Errorf("failed to upsert model price: %w", err)
	}

	return nil
}

// SetOverride sets the manual price of a stored quote
func (r *ModelPriceRepositoryImpl) SetOverride(ctx context.Context, id uint, price float64, by string, reason *string) error {
	db := r.getDB(ctx)

	result := db.Model(&models.ModelPrice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"override":        price,
			"override_by":     by,
			"override_reason": reason,
			"updated_at":      utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set model price override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("model price %d not found", id)
	}

	return nil
}

// ClearOverride removes the manual price of a stored quote
func (r *ModelPriceRepositoryImpl) ClearOverride(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	result := db.Model(&models.ModelPrice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"override":        nil,
			"override_by":     nil,
			"override_reason": nil,
			"updated_at":      utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to clear model price override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("model price %d not found", id)
	}

	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ModelPriceRepositoryImpl) applyFilter(db *gorm.DB, filter models.ModelPriceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.VehicleModelID != nil {
		db = db.Where("vehicle_model_id = ?", *filter.VehicleModelID)
	}
	if filter.RentalPlanID != nil {
		db = db.Where("rental_plan_id = ?", *filter.RentalPlanID)
	}
	if filter.HasOverride != nil {
		if *filter.HasOverride {
			db = db.Where("override IS NOT NULL")
		} else {
			db = db.Where("override IS NULL")
		}
	}
	return db
}

// ByFilter retrieves model prices based on filter criteria
func (r *ModelPriceRepositoryImpl) ByFilter(ctx context.Context, filter models.ModelPriceFilter, orderBy string, limit, offset int) ([]*models.ModelPrice, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ModelPrice{}), filter)

	if orderBy == "" {
		orderBy = "vehicle_model_id ASC, rental_plan_id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ModelPrice
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find model prices by filter: %w", err)
	}
	return rows, nil
}

// Count returns the number of model prices matching the filter
func (r *ModelPriceRepositoryImpl) Count(ctx context.Context, filter models.ModelPriceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ModelPrice{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count model prices: %w", err)
	}
	return count, nil
}

// Exists checks if any model price matching the filter exists
func (r *ModelPriceRepositoryImpl) Exists(ctx context.Context, filter models.ModelPriceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
