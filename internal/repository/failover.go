package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tourbill/internal/domain"
)

// FailoverLockRepository serves locks from Redis while it is healthy and
// degrades to process-local locks when it is not. After a minute it
// probes the primary again.
type FailoverLockRepository struct {
	primary   domain.LockRepository
	fallback  domain.LockRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverLockRepository(primary, fallback domain.LockRepository, logger *zerolog.Logger) *FailoverLockRepository {
	return &FailoverLockRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverLockRepository) TryAcquire(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	if !r.isDown.Load() {
		ok, err := r.primary.TryAcquire(ctx, bookingID, ttl)
		if err == nil {
			return ok, nil
		}
		r.logger.Error().Err(err).Msg("Primary lock repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		ok, err := r.primary.TryAcquire(ctx, bookingID, ttl)
		if err == nil {
			r.isDown.Store(false)
			return ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.TryAcquire(ctx, bookingID, ttl)
}

func (r *FailoverLockRepository) Release(ctx context.Context, bookingID int64) error {
	if !r.isDown.Load() {
		err := r.primary.Release(ctx, bookingID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary lock repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Release(ctx, bookingID)
}
