package repository

import (
	"context"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// PriceHistoryRepositoryImpl implements PriceHistoryRepository
type PriceHistoryRepositoryImpl struct {
	*BaseRepository[models.PriceHistory, models.PriceHistoryFilter]
}

// NewPriceHistoryRepository creates a new repository for the price audit trail
func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &PriceHistoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceHistory, models.PriceHistoryFilter](db),
	}
}

// ListByPart returns the price history of a part on a list, newest first
func (r *PriceHistoryRepositoryImpl) ListByPart(ctx context.Context, priceListID, partID uint, limit, offset int) ([]*models.PriceHistory, error) {
	db := r.getDB(ctx)

	query := db.Where("price_list_id = ? AND part_id = ?", priceListID, partID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PriceHistory
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	return rows, nil
}

// ListByBatch returns the history rows written by one batch apply
func (r *PriceHistoryRepositoryImpl) ListByBatch(ctx context.Context, batchID uint) ([]*models.PriceHistory, error) {
	db := r.getDB(ctx)

	var rows []*models.PriceHistory
	err := db.Where("batch_id = ?", batchID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list price history by batch: %w", err)
	}
	return rows, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceHistoryRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceHistoryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.PriceListID != nil {
		db = db.Where("price_list_id = ?", *filter.PriceListID)
	}
	if filter.PartID != nil {
		db = db.Where("part_id = ?", *filter.PartID)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves history rows based on filter criteria
func (r *PriceHistoryRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceHistoryFilter, orderBy string, limit, offset int) ([]*models.PriceHistory, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceHistory{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PriceHistory
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find price history by filter: %w", err)
	}
	return rows, nil
}

// Count returns the number of history rows matching the filter
func (r *PriceHistoryRepositoryImpl) Count(ctx context.Context, filter models.PriceHistoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceHistory{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count price history: %w", err)
	}
	return count, nil
}

// Exists checks if any history row matching the filter exists
func (r *PriceHistoryRepositoryImpl) Exists(ctx context.Context, filter models.PriceHistoryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
