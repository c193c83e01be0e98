package cache

import (
	"context"

	"elitecontrol/backend/internal/domain"
)

// StatsCache stores a computed dashboard summary between aggregation runs.
// A miss is signalled by a nil summary with a nil error.
type StatsCache interface {
	GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	SetDashboardSummary(ctx context.Context, summary *domain.DashboardSummary) error
	Invalidate(ctx context.Context) error
}

// NoopStatsCache is used when no redis address is configured. Every read is a
// miss and writes are discarded.
type NoopStatsCache struct{}

func (NoopStatsCache) GetDashboardSummary(context.Context) (*domain.DashboardSummary, error) {
	return nil, nil
}

func (NoopStatsCache) SetDashboardSummary(context.Context, *domain.DashboardSummary) error {
	return nil
}

func (NoopStatsCache) Invalidate(context.Context) error {
	return nil
}
