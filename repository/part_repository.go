package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/utils"
	"gorm.io/gorm"
)

// PartRepositoryImpl implements PartRepository
type PartRepositoryImpl struct {
	*BaseRepository[models.Part, models.PartFilter]
}

// NewPartRepository creates a new repository for catalog parts
func NewPartRepository(db *gorm.DB) PartRepository {
	return &PartRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Part, models.PartFilter](db),
	}
}

// BySKU retrieves a part by its SKU
func (r *PartRepositoryImpl) BySKU(ctx context.Context, sku string) (*models.Part, error) {
	db := r.getDB(ctx)

	var part models.Part
	err := db.Where("sku = ?", sku).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find part by SKU: %w", err)
	}

	return &part, nil
}

// ByUUID retrieves a part by its UUID
func (r *PartRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	db := r.getDB(ctx)

	var part models.Part
	err := db.Where("uuid = ?", id).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find part by UUID: %w", err)
	}

	return &part, nil
}

// ByIDs retrieves parts by a set of IDs
func (r *PartRepositoryImpl) ByIDs(ctx context.Context, ids []uint) ([]*models.Part, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)
	var parts []*models.Part
	if err := db.Where("id IN ?", ids).Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to find parts by IDs: %w", err)
	}
	return parts, nil
}

// ListActive returns active parts ordered by SKU
func (r *PartRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*models.Part, error) {
	db := r.getDB(ctx)

	query := db.Where("active = ?", true).Order("sku ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var parts []*models.Part
	if err := query.Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to list active parts: %w", err)
	}
	return parts, nil
}

// UpdateCostBasis sets the weighted-average cost of a part in both
// currencies. Stock quantity is never touched here; the receiving workflow
// owns it. Callers run this inside the shipment confirmation transaction
// together with the ledger insert.
func (r *PartRepositoryImpl) UpdateCostBasis(ctx context.Context, partID uint, averageCostUSD, averageCostARS float64) error {
	db := r.getDB(ctx)

	result := db.Model(&models.Part{}).
		Where("id = ?", partID).
		Updates(map[string]any{
			"average_cost_usd": averageCostUSD,
			"average_cost_ars": averageCostARS,
			"updated_at":       utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update part cost basis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("part %d not found", partID)
	}

	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PartRepositoryImpl) applyFilter(db *gorm.DB, filter models.PartFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.SKU != nil {
		db = db.Where("sku = ?", *filter.SKU)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.OEM != nil {
		db = db.Where("oem = ?", *filter.OEM)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves parts based on filter criteria
func (r *PartRepositoryImpl) ByFilter(ctx context.Context, filter models.PartFilter, orderBy string, limit, offset int) ([]*models.Part, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Part{}), filter)

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

	var parts []*models.Part
	if err := query.Find(&parts).Error; err != nil {
		return nil, fmt.Errorf("failed to find parts by filter: %w", err)
	}
	return parts, nil
}

// Count returns the number of parts matching the filter
func (r *PartRepositoryImpl) Count(ctx context.Context, filter models.PartFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Part{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count parts: %w", err)
	}
	return count, nil
}

// Exists checks if any part matching the filter exists
func (r *PartRepositoryImpl) Exists(ctx context.Context, filter models.PartFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
