package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// CostLedgerRepositoryImpl implements CostLedgerRepository
type CostLedgerRepositoryImpl struct {
	*BaseRepository[models.CostLedgerEntry, models.CostLedgerEntryFilter]
}

// NewCostLedgerRepository creates a new repository for the cost ledger
func NewCostLedgerRepository(db *gorm.DB) CostLedgerRepository {
	return &CostLedgerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CostLedgerEntry, models.CostLedgerEntryFilter](db),
	}
}

// LatestByPart returns the most recent ledger entry of a part
func (r *CostLedgerRepositoryImpl) LatestByPart(ctx context.Context, partID uint) (*models.CostLedgerEntry, error) {
	db := r.getDB(ctx)

	var entry models.CostLedgerEntry
	err := db.Where("part_id = ?", partID).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest ledger entry: %w", err)
	}

	return &entry, nil
}

// ListByPart returns the ledger entries of a part, newest first
func (r *CostLedgerRepositoryImpl) ListByPart(ctx context.Context, partID uint, limit, offset int) ([]*models.CostLedgerEntry, error) {
	db := r.getDB(ctx)

	query := db.Where("part_id = ?", partID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []*models.CostLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CostLedgerRepositoryImpl) applyFilter(db *gorm.DB, filter models.CostLedgerEntryFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.PartID != nil {
		db = db.Where("part_id = ?", *filter.PartID)
	}
	if filter.ShipmentID != nil {
		db = db.Where("shipment_id = ?", *filter.ShipmentID)
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

// ByFilter retrieves ledger entries based on filter criteria
func (r *CostLedgerRepositoryImpl) ByFilter(ctx context.Context, filter models.CostLedgerEntryFilter, orderBy string, limit, offset int) ([]*models.CostLedgerEntry, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CostLedgerEntry{}), filter)

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

	var entries []*models.CostLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to find ledger entries by filter: %w", err)
	}
	return entries, nil
}

// Count returns the number of ledger entries matching the filter
func (r *CostLedgerRepositoryImpl) Count(ctx context.Context, filter models.CostLedgerEntryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CostLedgerEntry{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

// Exists checks if any ledger entry matching the filter exists
func (r *CostLedgerRepositoryImpl) Exists(ctx context.Context, filter models.CostLedgerEntryFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
