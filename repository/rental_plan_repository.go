package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// RentalPlanRepositoryImpl implements RentalPlanRepository
type RentalPlanRepositoryImpl struct {
	*BaseRepository[models.RentalPlan, models.RentalPlanFilter]
}

// NewRentalPlanRepository creates a new repository for rental plans
func NewRentalPlanRepository(db *gorm.DB) RentalPlanRepository {
	return &RentalPlanRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RentalPlan, models.RentalPlanFilter](db),
	}
}

// ByName retrieves a rental plan by its name
func (r *RentalPlanRepositoryImpl) ByName(ctx context.Context, name string) (*models.RentalPlan, error) {
	db := r.getDB(ctx)

	var plan models.RentalPlan
	err := db.Where("name = ?", name).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rental plan by name: %w", err)
	}

	return &plan, nil
}

// ListActive returns active rental plans ordered by name
func (r *RentalPlanRepositoryImpl) ListActive(ctx context.Context) ([]*models.RentalPlan, error) {
	db := r.getDB(ctx)

	var plans []*models.RentalPlan
	err := db.Where("active = ?", true).Order("name ASC").Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active rental plans: %w", err)
	}
	return plans, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *RentalPlanRepositoryImpl) applyFilter(db *gorm.DB, filter models.RentalPlanFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.Tier != nil {
		db = db.Where("tier = ?", *filter.Tier)
	}
	if filter.RentToOwn != nil {
		db = db.Where("rent_to_own = ?", *filter.RentToOwn)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	return db
}

// ByFilter retrieves rental plans based on filter criteria
func (r *RentalPlanRepositoryImpl) ByFilter(ctx context.Context, filter models.RentalPlanFilter, orderBy string, limit, offset int) ([]*models.RentalPlan, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RentalPlan{}), filter)

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

	var plans []*models.RentalPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to find rental plans by filter: %w", err)
	}
	return plans, nil
}

// Count returns the number of rental plans matching the filter
func (r *RentalPlanRepositoryImpl) Count(ctx context.Context, filter models.RentalPlanFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RentalPlan{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rental plans: %w", err)
	}
	return count, nil
}

// Exists checks if any rental plan matching the filter exists
func (r *RentalPlanRepositoryImpl) Exists(ctx context.Context, filter models.RentalPlanFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
