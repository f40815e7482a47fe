package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/croftlabs/farmops/internal/config"
	"github.com/croftlabs/farmops/internal/inventory/entity"
	"github.com/croftlabs/farmops/internal/inventory/expiry"
	"github.com/croftlabs/farmops/internal/inventory/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dashboardCacheKey = "farmops:dashboard:summary"
const dashboardCacheTTL = 60 * time.Second

// DashboardService aggregates counts for the admin overview. Results are
// cached briefly in Redis; the dashboard tolerates slightly stale numbers.
type DashboardService struct {
	repos       *repository.Repositories
	rdb         *redis.Client
	horizonDays int
	logger      *zap.Logger
}

func NewDashboardService(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *DashboardService {
	horizon := cfg.Inventory.ExpiryHorizonDays
	if horizon <= 0 {
		horizon = expiry.DefaultHorizonDays
	}
	return &DashboardService{repos: repos, rdb: rdb, horizonDays: horizon, logger: logger}
}

type DashboardSummary struct {
	ActiveItems      int64     `json:"active_items"`
	InactiveItems    int64     `json:"inactive_items"`
	LowStockItems    int64     `json:"low_stock_items"`
	TotalStockValue  float64   `json:"total_stock_value"`
	PendingRequests  int64     `json:"pending_requests"`
	ApprovedRequests int64     `json:"approved_requests"`
	ExpiringBatches  int64     `json:"expiring_batches"`
	ExpiredBatches   int64     `json:"expired_batches"`
	GeneratedAt      time.Time `json:"generated_at"`
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var cached DashboardSummary
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	summary := &DashboardSummary{GeneratedAt: time.Now()}

	var err error
	if summary.ActiveItems, err = s.repos.Item.CountByStatus(ctx, entity.ItemStatusActive); err != nil {
		return nil, err
	}
	if summary.InactiveItems, err = s.repos.Item.CountByStatus(ctx, entity.ItemStatusInactive); err != nil {
		return nil, err
	}
	if summary.LowStockItems, err = s.repos.Item.CountLowStock(ctx); err != nil {
		return nil, err
	}
	if summary.TotalStockValue, err = s.repos.Item.TotalStockValue(ctx); err != nil {
		return nil, err
	}
	if summary.PendingRequests, err = s.repos.Request.CountByStatus(ctx, entity.RequestStatusPending); err != nil {
		return nil, err
	}
	if summary.ApprovedRequests, err = s.repos.Request.CountByStatus(ctx, entity.RequestStatusApproved); err != nil {
		return nil, err
	}

	now := summary.GeneratedAt
	horizon := now.AddDate(0, 0, s.horizonDays)
	if summary.ExpiringBatches, err = s.repos.Batch.CountExpiringBetween(ctx, now, horizon); err != nil {
		return nil, err
	}
	if summary.ExpiredBatches, err = s.repos.Batch.CountExpiredBefore(ctx, now); err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}
