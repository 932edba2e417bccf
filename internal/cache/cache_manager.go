package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CacheManager bundles the per-domain cache helpers.
type CacheManager struct {
	client *redis.Client

	Report     *CacheHelper
	ReportType *CacheHelper
	Reward     *CacheHelper
	User       *CacheHelper
}

// NewCacheManager creates cache helpers for every domain prefix. A nil client
// yields a manager whose helpers degrade gracefully to pass-through.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:     client,
		Report:     NewCacheHelper(client, ReportCacheConfig.Prefix),
		ReportType: NewCacheHelper(client, ReportTypeCacheConfig.Prefix),
		Reward:     NewCacheHelper(client, RewardCacheConfig.Prefix),
		User:       NewCacheHelper(client, UserCacheConfig.Prefix),
	}
}

// HealthCheck pings the underlying redis connection.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}

	return nil
}

// InvalidateReportCache drops the cached detail and listing entries touched by
// a report write.
func InvalidateReportCache(ctx context.Context, cm *CacheManager, reportID, ownerID string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Report, fmt.Sprintf("id:%s", reportID))
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("owner:%s:*", ownerID))
	SafeInvalidatePattern(ctx, cm.Report, "list:*")
}
