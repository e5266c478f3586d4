package domain

import (
	"context"
	"time"

	"tourbill/internal/models"
)

type Repository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CancelBookingWithVersion(ctx context.Context, id int64, version int, reason string) error
	RecoverBookingWithVersion(ctx context.Context, id int64, version int) error
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int, status string) error
}

// LockRepository guards exclusive export access per booking. TryAcquire
// returns false when another export already holds the lock.
type LockRepository interface {
	TryAcquire(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, bookingID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SheetsWriter interface {
	AppendAuditRow(ctx context.Context, entry *models.AuditEntry) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, payload interface{}) error
}

type Notifier interface {
	NotifyCancellation(ctx context.Context, booking *models.Booking, reason string) error
}
