package service

import (
	"context"

	"github.com/rs/zerolog"

	"tourbill/internal/database"
	"tourbill/internal/domain"
	"tourbill/internal/events"
	"tourbill/internal/models"
	"tourbill/internal/workflow"
)

// BookingService owns the cancellation workflow and the reply
// navigation around it.
type BookingService struct {
	repo            domain.Repository
	eventBus        domain.EventPublisher
	notifier        domain.Notifier
	composerBaseURL string
	logger          *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, notifier domain.Notifier, composerBaseURL string, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:            repo,
		eventBus:        eventBus,
		notifier:        notifier,
		composerBaseURL: composerBaseURL,
		logger:          logger,
	}
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return s.repo.CreateBooking(ctx, booking)
}

// Cancel moves a booking to its terminal state. The reason is optional
// and forwarded to notifications only when non-empty. A version below 1
// means the caller did not ask for an optimistic check, so the current
// version is used.
func (s *BookingService) Cancel(ctx context.Context, id int64, version int, reason string) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.CanCancel(booking.Status) {
		return database.ErrAlreadyCancelled
	}
	if version < 1 {
		version = int(booking.Version)
	}

	if err := s.repo.CancelBookingWithVersion(ctx, id, version, reason); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingCancelled, booking, models.StatusCancelled, reason)

	if s.notifier != nil {
		if err := s.notifier.NotifyCancellation(ctx, booking, reason); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", id).Msg("Cancellation notification failed")
		}
	}

	return nil
}

// Recover returns a cancelled booking to pending.
func (s *BookingService) Recover(ctx context.Context, id int64, version int) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.CanRecover(booking.Status) {
		return database.ErrNotCancelled
	}
	if version < 1 {
		version = int(booking.Version)
	}

	if err := s.repo.RecoverBookingWithVersion(ctx, id, version); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingRecovered, booking, models.StatusPending, "")
	return nil
}

// Confirm moves a pending booking to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id int64, version int) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.ValidTransition(booking.Status, models.StatusConfirmed) {
		return workflow.ErrInvalidTransition
	}
	return s.repo.UpdateBookingStatusWithVersion(ctx, id, version, models.StatusConfirmed)
}

// ReplyTarget resolves the composer URL for a reply chip. The reply
// status only selects where to navigate, it never mutates the booking.
func (s *BookingService) ReplyTarget(ctx context.Context, id int64, rawStatus string) (string, error) {
	if _, err := s.repo.GetBooking(ctx, id); err != nil {
		return "", err
	}

	status, err := workflow.NormalizeReplyStatus(rawStatus)
	if err != nil {
		return "", err
	}

	return workflow.ComposerTarget(s.composerBaseURL, id, status)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, status, reason string) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: booking.ID,
		Reference: booking.Reference,
		Status:    status,
		Reason:    reason,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
