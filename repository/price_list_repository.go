package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// PriceListRepositoryImpl implements PriceListRepository
type PriceListRepositoryImpl struct {
	*BaseRepository[models.PriceList, models.PriceListFilter]
}

// NewPriceListRepository creates a new repository for price lists
func NewPriceListRepository(db *gorm.DB) PriceListRepository {
	return &PriceListRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceList, models.PriceListFilter](db),
	}
}

// ByCode retrieves a price list by its channel code
func (r *PriceListRepositoryImpl) ByCode(ctx context.Context, code string) (*models.PriceList, error) {
	db := r.getDB(ctx)

	var list models.PriceList
	err := db.Where("code = ?", code).First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find price list by code: %w", err)
	}

	return &list, nil
}

// ListActive returns active price lists ordered by code
func (r *PriceListRepositoryImpl) ListActive(ctx context.Context) ([]*models.PriceList, error) {
	db := r.getDB(ctx)

	var lists []*models.PriceList
	err := db.Where("active = ?", true).Order("code ASC").Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active price lists: %w", err)
	}
	return lists, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PriceListRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceListFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Code != nil {
		db = db.Where("code = ?", *filter.Code)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}
	return db
}

// ByFilter retrieves price lists based on filter criteria
func (r *PriceListRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceListFilter, orderBy string, limit, offset int) ([]*models.PriceList, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceList{}), filter)

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

	var lists []*models.PriceList
	if err := query.Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to find price lists by filter: %w", err)
	}
	return lists, nil
}

// Count returns the number of price lists matching the filter
func (r *PriceListRepositoryImpl) Count(ctx context.Context, filter models.PriceListFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PriceList{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count price lists: %w", err)
	}
	return count, nil
}

// Exists checks if any price list matching the filter exists
func (r *PriceListRepositoryImpl) Exists(ctx context.Context, filter models.PriceListFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
