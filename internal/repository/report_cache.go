package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketClose/internal/domain/models"
	"MarketClose/internal/domain/repository"
	"MarketClose/pkg/cache"
)

const latestReportKey = "report:latest"

// CachedReports keeps the latest report in a cache.Service.
type CachedReports struct {
	cache cache.Service
	ttl   time.Duration
}

func NewCachedReports(c cache.Service, ttl time.Duration) repository.ReportCache {
	return &CachedReports{cache: c, ttl: ttl}
}

func (r *CachedReports) SaveLatest(ctx context.Context, rep models.Report) error {
	if err := r.cache.Set(ctx, latestReportKey, rep, r.ttl); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

func (r *CachedReports) Latest(ctx context.Context) (models.Report, error) {
	var rep models.Report
	if err := r.cache.Get(ctx, latestReportKey, &rep); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.Report{}, models.ErrNotFound
		}
		return models.Report{}, fmt.Errorf("load report: %w", err)
	}
	return rep, nil
}
