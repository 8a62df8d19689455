package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// DiscountRuleRepositoryImpl implements DiscountRuleRepository
type DiscountRuleRepositoryImpl struct {
	*BaseRepository[models.DiscountRule, models.DiscountRuleFilter]
}

// NewDiscountRuleRepository creates a new repository for discount rules
func NewDiscountRuleRepository(db *gorm.DB) DiscountRuleRepository {
	return &DiscountRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DiscountRule, models.DiscountRuleFilter](db),
	}
}

// ListActive returns active discount rules, highest priority first
func (r *DiscountRuleRepositoryImpl) ListActive(ctx context.Context) ([]*models.DiscountRule, error) {
	db := r.getDB(ctx)

	var rules []*models.DiscountRule
	err := db.Where("active = ?", true).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active discount rules: %w", err)
	}
	return rules, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *DiscountRuleRepositoryImpl) applyFilter(db *gorm.DB, filter models.DiscountRuleFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Condition != nil {
		db = db.Where("condition = ?", *filter.Condition)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	return db
}

// ByFilter retrieves discount rules based on filter criteria
func (r *DiscountRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.DiscountRuleFilter, orderBy string, limit, offset int) ([]*models.DiscountRule, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DiscountRule{}), filter)

	if orderBy == "" {
		orderBy = "priority DESC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rules []*models.DiscountRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to find discount rules by filter: %w", err)
	}
	return rules, nil
}

// Count returns the number of discount rules matching the filter
func (r *DiscountRuleRepositoryImpl) Count(ctx context.Context, filter models.DiscountRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DiscountRule{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count discount rules: %w", err)
	}
	return count, nil
}

// Exists checks if any discount rule matching the filter exists
func (r *DiscountRuleRepositoryImpl) Exists(ctx context.Context, filter models.DiscountRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
