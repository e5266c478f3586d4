package workflow

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"tourbill/internal/models"
)

// ErrInvalidTransition is returned for status moves outside the
// lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Booking statuses move pending → confirmed → cancelled; cancelled is
// terminal. The reply vocabulary is a parallel track that only seeds
// the external reply composer and never touches Booking.Status.

var replyStatuses = map[string]struct{}{
	models.ReplyApproved:    {},
	models.ReplyDeclined:    {},
	models.ReplyRescheduled: {},
	models.ReplyPending:     {},
}

// CanCancel reports whether the cancel action may be offered. The only
// status that forbids it is cancelled itself.
func CanCancel(status string) bool {
	return status != models.StatusCancelled
}

// CanRecover reports whether a booking can be reopened to pending.
func CanRecover(status string) bool {
	return status == models.StatusCancelled
}

// ValidTransition checks the status lifecycle. Recovery from cancelled
// back to pending is the one sanctioned backward edge.
func ValidTransition(from, to string) bool {
	switch from {
	case models.StatusPending:
		return to == models.StatusConfirmed || to == models.StatusCancelled
	case models.StatusConfirmed:
		return to == models.StatusCancelled
	case models.StatusCancelled:
		return to == models.StatusPending
	default:
		return false
	}
}

// NormalizeReplyStatus validates a reply-composer status value.
func NormalizeReplyStatus(raw string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := replyStatuses[status]; !ok {
		return "", fmt.Errorf("unknown reply status %q", raw)
	}
	return status, nil
}

// ComposerTarget builds the external reply-composer URL for a booking
// and a validated reply status. Selecting a reply is pure navigation:
// no state changes here.
func ComposerTarget(baseURL string, bookingID int64, replyStatus string) (string, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse reply composer url: %w", err)
	}
	query := target.Query()
	query.Set("booking_id", strconv.FormatInt(bookingID, 10))
	query.Set("status", replyStatus)
	target.RawQuery = query.Encode()
	return target.String(), nil
}
