// Package search provides lead search with a per-device recent-query
// history.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// historyLimit caps how many recent queries a device keeps.
const historyLimit = 5

// History stores recent search queries per device in redis. Queries are
// deduplicated; re-searching an old query moves it back to the front.
type History struct {
	rdb *redis.Client
}

func NewHistory(rdb *redis.Client) *History {
	return &History{rdb: rdb}
}

func historyKey(deviceID string) string {
	return fmt.Sprintf("search:history:%s", deviceID)
}

// Record pushes a query to the front of the device history.
func (h *History) Record(ctx context.Context, deviceID, query string) error {
	query = strings.TrimSpace(query)
	if deviceID == "" || query == "" {
		return nil
	}

	key := historyKey(deviceID)
	pipe := h.rdb.TxPipeline()
	pipe.LRem(ctx, key, 0, query)
	pipe.LPush(ctx, key, query)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	_, err := pipe.Exec(ctx)
	return err
}

// Recent returns the device's queries, newest first.
func (h *History) Recent(ctx context.Context, deviceID string) ([]string, error) {
	if deviceID == "" {
		return []string{}, nil
	}
	return h.rdb.LRange(ctx, historyKey(deviceID), 0, historyLimit-1).Result()
}

// Clear wipes the device history.
func (h *History) Clear(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return nil
	}
	return h.rdb.Del(ctx, historyKey(deviceID)).Err()
}
