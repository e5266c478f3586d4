package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reply vocabulary used to pre-seed the external reply composer. These
// never mutate Booking.Status.
const (
	ReplyApproved    = "APPROVED"
	ReplyDeclined    = "DECLINED"
	ReplyRescheduled = "RESCHEDULED"
	ReplyPending     = "PENDING"
)

const (
	// LogoFetchTimeoutSeconds bounds the remote logo download during
	// vector rendering; past it the document falls back to plain text.
	LogoFetchTimeoutSeconds = 5

	// MaxDescriptionRunes is the vector renderer's character budget for
	// the package description column.
	MaxDescriptionRunes = 48

	// ExportLockTTLSeconds is how long a per-booking export lock is held
	// at most before it expires on its own.
	ExportLockTTLSeconds = 120

	// WorkerQueueSize is the in-memory audit queue capacity.
	WorkerQueueSize = 128

	// RateLimitRPS and RateLimitBurst are the API defaults per key.
	RateLimitRPS   = 10
	RateLimitBurst = 5
)
