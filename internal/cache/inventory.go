package cache

import (
	"context"
	"fmt"
	"time"

	"forum/internal/middleware"
)

const (
	CommunityListKey       = "communities:list:name_asc"
	CommunityIDKeyPrefix   = "community:id:%d"
	CommunityNameKeyPrefix = "community:name:%s"
)

const (
	CommunityListTTL = 10 * time.Minute
	CommunityTTL     = 10 * time.Minute
)

func CommunityIDKey(id uint) string {
	return fmt.Sprintf(CommunityIDKeyPrefix, id)
}

func CommunityNameKey(name string) string {
	return fmt.Sprintf(CommunityNameKeyPrefix, name)
}

// Invalidate deletes keys. Failures are logged and otherwise ignored.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

// InvalidateCommunityList drops the cached alphabetical listing.
func InvalidateCommunityList(ctx context.Context) {
	Invalidate(ctx, CommunityListKey)
}

// InvalidateAllCommunities drops the listing and every per-community entry.
// Used after bulk rewrites where IDs and names may be reused.
func InvalidateAllCommunities(ctx context.Context) {
	if client == nil {
		return
	}
	keys := []string{CommunityListKey}
	iter := client.Scan(ctx, 0, "community:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache scan failed", "error", err)
	}
	Invalidate(ctx, keys...)
}
