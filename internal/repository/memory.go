package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryReportCache is the in-process fallback when Redis is unavailable.
type MemoryReportCache struct {
	entries sync.Map
	ttl     time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	return &MemoryReportCache{
		ttl: ttl,
	}
}

func (r *MemoryReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := r.entries.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return nil, nil
	}
	return entry.data, nil
}

func (r *MemoryReportCache) Set(ctx context.Context, key string, data []byte) error {
	r.entries.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryReportCache) InvalidateEstablishment(ctx context.Context, establishmentID int64) error {
	prefix := fmt.Sprintf("report:est:%d:", establishmentID)
	r.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			r.entries.Delete(key)
		}
		return true
	})
	return nil
}
