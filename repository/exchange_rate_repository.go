package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/motofleet/backoffice/models"
	"gorm.io/gorm"
)

// ExchangeRateRepositoryImpl implements ExchangeRateRepository
type ExchangeRateRepositoryImpl struct {
	*BaseRepository[models.ExchangeRate, models.ExchangeRateFilter]
}

// NewExchangeRateRepository creates a new repository for reference rates
func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &ExchangeRateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ExchangeRate, models.ExchangeRateFilter](db),
	}
}

// Latest returns the rate in effect (last inserted wins)
func (r *ExchangeRateRepositoryImpl) Latest(ctx context.Context) (*models.ExchangeRate, error) {
	db := r.getDB(ctx)

	var rate models.ExchangeRate
	err := db.Order("id DESC").First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest exchange rate: %w", err)
	}

	return &rate, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ExchangeRateRepositoryImpl) applyFilter(db *gorm.DB, filter models.ExchangeRateFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
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

// ByFilter retrieves exchange rates based on filter criteria
func (r *ExchangeRateRepositoryImpl) ByFilter(ctx context.Context, filter models.ExchangeRateFilter, orderBy string, limit, offset int) ([]*models.ExchangeRate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ExchangeRate{}), filter)

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

	var rates []*models.ExchangeRate
	if err := query.Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to find exchange rates by filter: %w", err)
	}
	return rates, nil
}

// Count returns the number of exchange rates matching the filter
func (r *ExchangeRateRepositoryImpl) Count(ctx context.Context, filter models.ExchangeRateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ExchangeRate{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count exchange rates: %w", err)
	}
	return count, nil
}

// Exists checks if any exchange rate matching the filter exists
func (r *ExchangeRateRepositoryImpl) Exists(ctx context.Context, filter models.ExchangeRateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
