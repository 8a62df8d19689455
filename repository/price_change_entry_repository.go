package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// PriceChangeEntryRepositoryImpl implements PriceChangeEntryRepository
type PriceChangeEntryRepositoryImpl struct {
	*BaseRepository[models.PriceChangeEntry, models.PriceChangeEntryFilter]
}

// NewPriceChangeEntryRepository creates a new repository for batch entries
func NewPriceChangeEntryRepository(db *gorm.DB) PriceChangeEntryRepository {
	return &PriceChangeEntryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceChangeEntry, models.PriceChangeEntryFilter](db),
	}
}

// ListByBatch returns the proposed entries of a batch
func (r *PriceChangeEntryRepositoryImpl) ListByBatch(ctx context.Context, batchID uint) ([]*models.PriceChangeEntry, error) {
	db := r.getDB(ctx)

	var entries []*models.PriceChangeEntry
	err := db.Where("batch_id = ?", batchID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list batch entries: %w", err)
	}
	return entries, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceChangeEntryRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceChangeEntryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.PartID != nil {
		db = db.Where("part_id = ?", *filter.PartID)
	}
	return db
}

// ByFilter retrieves batch entries based on filter criteria
func (r *PriceChangeEntryRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceChangeEntryFilter, orderBy string, limit, offset int) ([]*models.PriceChangeEntry, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceChangeEntry{}), filter)

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

	var entries []*models.PriceChangeEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to find batch entries by filter: %w", err)
	}
	return entries, nil
}

// Count returns the number of batch entries matching the filter
func (r *PriceChangeEntryRepositoryImpl) Count(ctx context.Context, filter models.PriceChangeEntryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceChangeEntry{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count batch entries: %w", err)
	}
	return count, nil
}

// Exists checks if any batch entry matching the filter exists
func (r *PriceChangeEntryRepositoryImpl) Exists(ctx context.Context, filter models.PriceChangeEntryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
