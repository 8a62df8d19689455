// Package services provides external service integrations and technical concerns like caching and exports
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/motofleet/backoffice/config"
	"github.com/motofleet/backoffice/models"
	"github.com/motofleet/backoffice/repository"
	"github.com/redis/go-redis/v9"
)

const rateCacheField = "exchange_rate:latest"

// ExchangeRateService serves the reference USD rate, caching the latest
// row so the hot pricing paths do not hit the database on every request.
type ExchangeRateService interface {
	// Latest returns the rate in effect, or nil when none was ever set.
	Latest(ctx context.Context) (*models.ExchangeRate, error)
	// Invalidate drops the cached rate. Called after a new rate is saved.
	Invalidate(ctx context.Context) error
}

// ExchangeRateServiceImpl implements ExchangeRateService with a redis
// cache in front of the append-only exchange_rates table.
type ExchangeRateServiceImpl struct {
	rateRepo    repository.ExchangeRateRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

func NewExchangeRateService(rateRepo repository.ExchangeRateRepository, rc *redis.Client, cacheConfig *config.CacheConfig) ExchangeRateService {
	return &ExchangeRateServiceImpl{
		rateRepo:    rateRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

func (s *ExchangeRateServiceImpl) cacheKey() string {
	if s.cacheConfig != nil {
		return s.cacheConfig.RedisPrefix + rateCacheField
	}
	return rateCacheField
}

func (s *ExchangeRateServiceImpl) cacheTTL() time.Duration {
	if s.cacheConfig != nil && s.cacheConfig.DefaultTTL > 0 {
		return s.cacheConfig.DefaultTTL
	}
	return time.Hour
}

// Latest tries redis first and falls back to the database. Cache failures
// are ignored so a redis outage never blocks pricing.
func (s *ExchangeRateServiceImpl) Latest(ctx context.Context) (*models.ExchangeRate, error) {
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, s.cacheKey()).Bytes(); err == nil && len(bs) > 0 {
			var cached models.ExchangeRate
			if err := json.Unmarshal(bs, &cached); err == nil && cached.Rate > 0 {
				return &cached, nil
			}
		}
	}

	rate, err := s.rateRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, nil
	}

	if s.rc != nil {
		if bs, err := json.Marshal(rate); err == nil {
			_ = s.rc.Set(ctx, s.cacheKey(), bs, s.cacheTTL()).Err()
		}
	}

	return rate, nil
}

func (s *ExchangeRateServiceImpl) Invalidate(ctx context.Context) error {
	if s.rc == nil {
		return nil
	}
	return s.rc.Del(ctx, s.cacheKey()).Err()
}
