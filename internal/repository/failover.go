package repository

import (
	"context"
	"sync/atomic"
	"time"

	"balneario/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverReportCache serves from the primary cache until it errors, then
// switches to the fallback and probes the primary again after a minute.
type FailoverReportCache struct {
	primary  domain.ReportCache
	fallback domain.ReportCache
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// unix nanos of the last failed primary call, read from request goroutines
	lastCheck atomic.Int64
}

func (r *FailoverReportCache) markDown() {
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverReportCache) recoveryDue() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func NewFailoverReportCache(primary, fallback domain.ReportCache, logger *zerolog.Logger) *FailoverReportCache {
	return &FailoverReportCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.isDown.Load() {
		data, err := r.primary.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		r.logger.Error().Err(err).Msg("Primary report cache failed, falling back to memory")
		r.markDown()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && r.recoveryDue() {
		data, err := r.primary.Get(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return data, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Get(ctx, key)
}

func (r *FailoverReportCache) Set(ctx context.Context, key string, data []byte) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, key, data)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary report cache failed, falling back to memory")
		r.markDown()
	}

	return r.fallback.Set(ctx, key, data)
}

// InvalidateEstablishment always reaches both caches. A stale fallback entry
// surviving an invalidation would serve wrong numbers after a failover.
func (r *FailoverReportCache) InvalidateEstablishment(ctx context.Context, establishmentID int64) error {
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.InvalidateEstablishment(ctx, establishmentID)
		if primaryErr != nil {
			r.logger.Error().Err(primaryErr).Msg("Primary report cache failed, falling back to memory")
			r.markDown()
		}
	}

	return r.fallback.InvalidateEstablishment(ctx, establishmentID)
}
