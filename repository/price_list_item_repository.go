package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// PriceListItemRepositoryImpl implements PriceListItemRepository
type PriceListItemRepositoryImpl struct {
	*BaseRepository[models.PriceListItem, models.PriceListItemFilter]
}

// NewPriceListItemRepository creates a new repository for price list entries
func NewPriceListItemRepository(db *gorm.DB) PriceListItemRepository {
	return &PriceListItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceListItem, models.PriceListItemFilter](db),
	}
}

// OpenEntry returns the current (valid_to IS NULL) entry for a part on a
// list at one quantity break. Min quantity 0 is the base price.
func (r *PriceListItemRepositoryImpl) OpenEntry(ctx context.Context, priceListID, partID uint, minQuantity int) (*models.PriceListItem, error) {
	db := r.getDB(ctx)

	var item models.PriceListItem
	err := db.Where("price_list_id = ? AND part_id = ? AND min_quantity = ? AND valid_to IS NULL", priceListID, partID, minQuantity).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open price entry: %w", err)
	}

	return &item, nil
}

// OpenEntriesForPart returns every open quantity break of a part on a list,
// base price first.
func (r *PriceListItemRepositoryImpl) OpenEntriesForPart(ctx context.Context, priceListID, partID uint) ([]*models.PriceListItem, error) {
	db := r.getDB(ctx)

	var items []*models.PriceListItem
	err := db.Where("price_list_id = ? AND part_id = ? AND valid_to IS NULL", priceListID, partID).
		Order("min_quantity ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open price entries for part: %w", err)
	}
	return items, nil
}

// OpenEntriesByList returns all current entries of a price list
func (r *PriceListItemRepositoryImpl) OpenEntriesByList(ctx context.Context, priceListID uint) ([]*models.PriceListItem, error) {
	db := r.getDB(ctx)

	var items []*models.PriceListItem
	err := db.Where("price_list_id = ? AND valid_to IS NULL", priceListID).
		Order("part_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open price entries: %w", err)
	}
	return items, nil
}

// OpenEntriesByParts returns the current base (min_quantity = 0) entries
// for a set of parts keyed by part ID
func (r *PriceListItemRepositoryImpl) OpenEntriesByParts(ctx context.Context, priceListID uint, partIDs []uint) (map[uint]*models.PriceListItem, error) {
	out := make(map[uint]*models.PriceListItem)
	if len(partIDs) == 0 {
		return out, nil
	}

	db := r.getDB(ctx)
	var items []*models.PriceListItem
	err := db.Where("price_list_id = ? AND part_id IN ? AND min_quantity = 0 AND valid_to IS NULL", priceListID, partIDs).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find open price entries: %w", err)
	}

	for _, item := range items {
		out[item.PartID] = item
	}
	return out, nil
}

// CloseOpenEntry stamps valid_to on the current entry of a part. Closing a
// part with no open entry is not an error; first-time pricing has none.
func (r *PriceListItemRepositoryImpl) CloseOpenEntry(ctx context.Context, priceListID, partID uint, minQuantity int, at time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.PriceListItem{}).
		Where("price_list_id = ? AND part_id = ? AND min_quantity = ? AND valid_to IS NULL", priceListID, partID, minQuantity).
		Update("valid_to", at).Error
	if err != nil {
		return fmt.Errorf("failed to close open price entry: %w", err)
	}
	return nil
}

// PriceAt returns the base entry that was effective at the given instant
func (r *PriceListItemRepositoryImpl) PriceAt(ctx context.Context, priceListID, partID uint, at time.Time) (*models.PriceListItem, error) {
	db := r.getDB(ctx)

	var item models.PriceListItem
	err := db.Where("price_list_id = ? AND part_id = ? AND min_quantity = 0 AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)",
		priceListID, partID, at, at).
		Order("valid_from DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find price entry at instant: %w", err)
	}

	return &item, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceListItemRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceListItemFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.PriceListID != nil {
		db = db.Where("price_list_id = ?", *filter.PriceListID)
	}
	if filter.PartID != nil {
		db = db.Where("part_id = ?", *filter.PartID)
	}
	if filter.MinQuantity != nil {
		db = db.Where("min_quantity = ?", *filter.MinQuantity)
	}
	if filter.OpenOnly != nil && *filter.OpenOnly {
		db = db.Where("valid_to IS NULL")
	}
	if filter.ActiveAt != nil {
		db = db.Where("valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", *filter.ActiveAt, *filter.ActiveAt)
	}
	return db
}

// ByFilter retrieves price list entries based on filter criteria
func (r *PriceListItemRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceListItemFilter, orderBy string, limit, offset int) ([]*models.PriceListItem, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceListItem{}), filter)

	if orderBy == "" {
		orderBy = "valid_from DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []*models.PriceListItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find price entries by filter: %w", err)
	}
	return items, nil
}

// Count returns the number of price entries matching the filter
func (r *PriceListItemRepositoryImpl) Count(ctx context.Context, filter models.PriceListItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceListItem{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count price entries: %w", err)
	}
	return count, nil
}

// Exists checks if any price entry matching the filter exists
func (r *PriceListItemRepositoryImpl) Exists(ctx context.Context, filter models.PriceListItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
