package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"elitecontrol/backend/internal/domain"
)

const dashboardSummaryKey = "elitecontrol:stats:dashboard-summary"

// RedisStatsCache keeps the dashboard summary in redis so repeated dashboard
// loads do not re-scan the catalog and the sales history.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatsCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisStatsCache{client: client, ttl: ttl}, nil
}

func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

func (c *RedisStatsCache) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	payload, err := c.client.Get(ctx, dashboardSummaryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		// A corrupt entry is treated as a miss so the aggregator recomputes.
		return nil, nil
	}
	return &summary, nil
}

func (c *RedisStatsCache) SetDashboardSummary(ctx context.Context, summary *domain.DashboardSummary) error {
	if summary == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, dashboardSummaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardSummaryKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
