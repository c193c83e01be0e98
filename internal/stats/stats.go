// Package stats computes the reporting numbers the dashboard shows: catalog
// counters, revenue buckets, and the best-selling products ranking.
package stats

import (
	"context"
	"log"
	"sort"
	"time"

	"elitecontrol/backend/internal/cache"
	"elitecontrol/backend/internal/domain"
	"elitecontrol/backend/internal/store"
)

// lowStockThreshold marks products that need restocking. The comparison is
// strict: a stock of exactly 20 is not low.
const lowStockThreshold = 20

// dashboardTopLimit caps the ranking embedded in the dashboard summary.
const dashboardTopLimit = 5

type Aggregator struct {
	repo  store.Repository
	cache cache.StatsCache

	// now is swapped in tests so the today bucket can be pinned.
	now func() time.Time
}

func New(repo store.Repository, statsCache cache.StatsCache) *Aggregator {
	if statsCache == nil {
		statsCache = cache.NoopStatsCache{}
	}
	return &Aggregator{
		repo:  repo,
		cache: statsCache,
		now:   time.Now,
	}
}

// ProductStats scans the catalog once and reports the product count, how many
// products sit below the restock threshold, and the per-category histogram.
func (a *Aggregator) ProductStats(ctx context.Context) (*domain.ProductStats, error) {
	products, err := a.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.ProductStats{
		TotalProducts: len(products),
		Categories:    map[string]int{},
	}
	for _, p := range products {
		if p.Stock < lowStockThreshold {
			result.LowStock++
		}
		result.Categories[p.Category]++
	}
	return result, nil
}

// SalesStats reports overall and same-day counters. The today bucket covers
// [start of the local day, start of the next day): a sale stamped exactly at
// midnight belongs to the day that begins, one stamped exactly 24h later does
// not.
func (a *Aggregator) SalesStats(ctx context.Context) (*domain.SalesStats, error) {
	sales, err := a.repo.ListSales(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := a.dayBounds()
	result := &domain.SalesStats{TotalSales: len(sales)}
	for _, sale := range sales {
		result.TotalRevenueCents += sale.TotalCents
		if !sale.Date.Before(dayStart) && sale.Date.Before(dayEnd) {
			result.TodaySales++
			result.TodayRevenueCents += sale.TotalCents
		}
	}
	return result, nil
}

func (a *Aggregator) dayBounds() (time.Time, time.Time) {
	now := a.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24 * time.Hour)
}

// TopProducts ranks sold products by total quantity across every recorded
// sale. Lines are keyed by product name, falling back to the product id when a
// line carries no name; lines with neither are skipped. Ties are broken by key
// ascending so repeated calls return the same order.
func (a *Aggregator) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	if limit < 1 {
		limit = dashboardTopLimit
	}

	sales, err := a.repo.ListSales(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	qtyByKey := map[string]int{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			key := item.Name
			if key == "" {
				key = item.ProductID
			}
			if key == "" {
				continue
			}
			qtyByKey[key] += item.Quantity
		}
	}

	ranking := make([]domain.TopProduct, 0, len(qtyByKey))
	for key, qty := range qtyByKey {
		ranking = append(ranking, domain.TopProduct{Name: key, Quantity: qty})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].Name < ranking[j].Name
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// DashboardSummary bundles the three aggregates into one payload. The result
// is served from cache when a fresh copy exists; cache failures degrade to a
// recompute, never to an error.
func (a *Aggregator) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	if cached, err := a.cache.GetDashboardSummary(ctx); err != nil {
		log.Printf("[WARN] stats cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	products, err := a.ProductStats(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := a.SalesStats(ctx)
	if err != nil {
		return nil, err
	}
	top, err := a.TopProducts(ctx, dashboardTopLimit)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Products:    *products,
		Sales:       *sales,
		TopProducts: top,
		GeneratedAt: a.now().UTC().Format(time.RFC3339),
	}
	if err := a.cache.SetDashboardSummary(ctx, summary); err != nil {
		log.Printf("[WARN] stats cache write failed: %v", err)
	}
	return summary, nil
}

// Invalidate drops the cached summary. The sale posting path calls it so a
// dashboard load right after a sale reflects the new numbers.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if err := a.cache.Invalidate(ctx); err != nil {
		log.Printf("[WARN] stats cache invalidate failed: %v", err)
	}
}
