package repository

import (
	"context"
	"sync"
	"time"
)

type memoryLock struct {
	expiresAt time.Time
}

// MemoryLockRepository keeps export locks in process memory. It backs
// the Redis repository when Redis is unavailable.
type MemoryLockRepository struct {
	mu    sync.Mutex
	locks map[int64]memoryLock
}

func NewMemoryLockRepository() *MemoryLockRepository {
	return &MemoryLockRepository{
		locks: make(map[int64]memoryLock),
	}
}

func (r *MemoryLockRepository) TryAcquire(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lock, ok := r.locks[bookingID]; ok && time.Now().Before(lock.expiresAt) {
		return false, nil
	}
	r.locks[bookingID] = memoryLock{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (r *MemoryLockRepository) Release(ctx context.Context, bookingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, bookingID)
	return nil
}
