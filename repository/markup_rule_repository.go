package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// MarkupRuleRepositoryImpl implements MarkupRuleRepository
type MarkupRuleRepositoryImpl struct {
	*BaseRepository[models.MarkupRule, models.MarkupRuleFilter]
}

// NewMarkupRuleRepository creates a new repository for markup rules
func NewMarkupRuleRepository(db *gorm.DB) MarkupRuleRepository {
	return &MarkupRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MarkupRule, models.MarkupRuleFilter](db),
	}
}

// ListActive returns active markup rules, highest priority first
func (r *MarkupRuleRepositoryImpl) ListActive(ctx context.Context) ([]*models.MarkupRule, error) {
	db := r.getDB(ctx)

	var rules []*models.MarkupRule
	err := db.Where("active = ?", true).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active markup rules: %w", err)
	}
	return rules, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *MarkupRuleRepositoryImpl) applyFilter(db *gorm.DB, filter models.MarkupRuleFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	return db
}

// ByFilter retrieves markup rules based on filter criteria
func (r *MarkupRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.MarkupRuleFilter, orderBy string, limit, offset int) ([]*models.MarkupRule, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MarkupRule{}), filter)

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

	var rules []*models.MarkupRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to find markup rules by filter: %w", err)
	}
	return rules, nil
}

// Count returns the number of markup rules matching the filter
func (r *MarkupRuleRepositoryImpl) Count(ctx context.Context, filter models.MarkupRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MarkupRule{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count markup rules: %w", err)
	}
	return count, nil
}

// Exists checks if any markup rule matching the filter exists
func (r *MarkupRuleRepositoryImpl) Exists(ctx context.Context, filter models.MarkupRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
