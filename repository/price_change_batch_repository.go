package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// PriceChangeBatchRepositoryImpl implements PriceChangeBatchRepository
type PriceChangeBatchRepositoryImpl struct {
	*BaseRepository[models.PriceChangeBatch, models.PriceChangeBatchFilter]
}

// NewPriceChangeBatchRepository creates a new repository for bulk price changes
func NewPriceChangeBatchRepository(db *gorm.DB) PriceChangeBatchRepository {
	return &PriceChangeBatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceChangeBatch, models.PriceChangeBatchFilter](db),
	}
}

// ByUUID retrieves a batch by its UUID
func (r *PriceChangeBatchRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.PriceChangeBatch, error) {
	db := r.getDB(ctx)

	var batch models.PriceChangeBatch
	err := db.Where("uuid = ?", id).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find price change batch by UUID: %w", err)
	}

	return &batch, nil
}

// ByUUIDWithEntries retrieves a batch with its proposed entries preloaded
func (r *PriceChangeBatchRepositoryImpl) ByUUIDWithEntries(ctx context.Context, id uuid.UUID) (*models.PriceChangeBatch, error) {
	db := r.getDB(ctx)

	var batch models.PriceChangeBatch
	err := db.Preload("Entries").Preload("Entries.Part").
		Where("uuid = ?", id).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find price change batch with entries: %w", err)
	}

	return &batch, nil
}

// MarkApplied transitions a draft batch to applied. The status guard in the
// WHERE clause makes the apply idempotent under concurrent requests; only
// one caller sees true.
func (r *PriceChangeBatchRepositoryImpl) MarkApplied(ctx context.Context, batchID uint, by string, at time.Time) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.PriceChangeBatch{}).
		Where("id = ? AND status = ?", batchID, models.PriceChangeBatchStatusDraft.String()).
		Updates(map[string]any{
			"status":     models.PriceChangeBatchStatusApplied.String(),
			"applied_by": by,
			"applied_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark batch applied: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkDiscarded transitions a draft batch to discarded
func (r *PriceChangeBatchRepositoryImpl) MarkDiscarded(ctx context.Context, batchID uint) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.PriceChangeBatch{}).
		Where("id = ? AND status = ?", batchID, models.PriceChangeBatchStatusDraft.String()).
		Update("status", models.PriceChangeBatchStatusDiscarded.String())
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark batch discarded: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceChangeBatchRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceChangeBatchFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.PriceListID != nil {
		db = db.Where("price_list_id = ?", *filter.PriceListID)
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

// ByFilter retrieves batches based on filter criteria
func (r *PriceChangeBatchRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceChangeBatchFilter, orderBy string, limit, offset int) ([]*models.PriceChangeBatch, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceChangeBatch{}), filter)

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

	var batches []*models.PriceChangeBatch
	if err := query.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to find batches by filter: %w", err)
	}
	return batches, nil
}

// Count returns the number of batches matching the filter
func (r *PriceChangeBatchRepositoryImpl) Count(ctx context.Context, filter models.PriceChangeBatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceChangeBatch{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count batches: %w", err)
	}
	return count, nil
}

// Exists checks if any batch matching the filter exists
func (r *PriceChangeBatchRepositoryImpl) Exists(ctx context.Context, filter models.PriceChangeBatchFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
