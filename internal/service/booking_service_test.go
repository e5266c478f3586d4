package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbill/internal/database"
	"tourbill/internal/events"
	"tourbill/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingByReference(ctx context.Context, ref string) (*models.Booking, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockRepo) CancelBookingWithVersion(ctx context.Context, id int64, v int, reason string) error {
	return m.Called(ctx, id, v, reason).Error(0)
}
func (m *mockRepo) RecoverBookingWithVersion(ctx context.Context, id int64, v int) error {
	return m.Called(ctx, id, v).Error(0)
}
func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id int64, v int, s string) error {
	return m.Called(ctx, id, v, s).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyCancellation(ctx context.Context, b *models.Booking, reason string) error {
	return m.Called(ctx, b, reason).Error(0)
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		ID:        42,
		Reference: "TB-2025-0042",
		Status:    models.StatusPending,
		Version:   1,
	}
}

func newBookingService(repo *mockRepo, notifier *mockNotifier, bus *events.EventBus) *BookingService {
	logger := zerolog.Nop()
	if notifier == nil {
		return NewBookingService(repo, bus, nil, "https://crm.example.com/reply", &logger)
	}
	return NewBookingService(repo, bus, notifier, "https://crm.example.com/reply", &logger)
}

func TestCancelBooking(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	bus := events.NewEventBus()

	var published []*events.Event
	bus.Subscribe(events.EventBookingCancelled, func(e *events.Event) error {
		published = append(published, e)
		return nil
	})

	booking := pendingBooking()
	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)
	repo.On("CancelBookingWithVersion", mock.Anything, int64(42), 1, "weather advisory").Return(nil)
	notifier.On("NotifyCancellation", mock.Anything, booking, "weather advisory").Return(nil)

	svc := newBookingService(repo, notifier, bus)
	err := svc.Cancel(context.Background(), 42, 1, "weather advisory")
	require.NoError(t, err)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
	assert.Len(t, published, 1)
}

func TestCancelBookingDefaultsToCurrentVersion(t *testing.T) {
	repo := &mockRepo{}

	booking := pendingBooking()
	booking.Version = 3
	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)
	repo.On("CancelBookingWithVersion", mock.Anything, int64(42), 3, "").Return(nil)

	svc := newBookingService(repo, nil, nil)
	require.NoError(t, svc.Cancel(context.Background(), 42, 0, ""))
	repo.AssertExpectations(t)
}

func TestRecoverBookingDefaultsToCurrentVersion(t *testing.T) {
	repo := &mockRepo{}

	booking := pendingBooking()
	booking.Status = models.StatusCancelled
	booking.Version = 2
	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)
	repo.On("RecoverBookingWithVersion", mock.Anything, int64(42), 2).Return(nil)

	svc := newBookingService(repo, nil, nil)
	require.NoError(t, svc.Recover(context.Background(), 42, 0))
	repo.AssertExpectations(t)
}

func TestCancelBookingAlreadyCancelled(t *testing.T) {
	repo := &mockRepo{}
	booking := pendingBooking()
	booking.Status = models.StatusCancelled
	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)

	svc := newBookingService(repo, nil, nil)
	err := svc.Cancel(context.Background(), 42, 1, "")
	assert.ErrorIs(t, err, database.ErrAlreadyCancelled)
	repo.AssertNotCalled(t, "CancelBookingWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBookingEmptyReason(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}

	booking := pendingBooking()
	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)
	repo.On("CancelBookingWithVersion", mock.Anything, int64(42), 1, "").Return(nil)
	notifier.On("NotifyCancellation", mock.Anything, booking, "").Return(nil)

	svc := newBookingService(repo, notifier, nil)
	require.NoError(t, svc.Cancel(context.Background(), 42, 1, ""))
	notifier.AssertExpectations(t)
}

func TestRecoverBooking(t *testing.T) {
	repo := &mockRepo{}
	booking := pendingBooking()
	booking.Status = models.StatusCancelled
	booking.Version = 2

	repo.On("GetBooking", mock.Anything, int64(42)).Return(booking, nil)
	repo.On("RecoverBookingWithVersion", mock.Anything, int64(42), 2).Return(nil)

	svc := newBookingService(repo, nil, nil)
	require.NoError(t, svc.Recover(context.Background(), 42, 2))
	repo.AssertExpectations(t)
}

func TestRecoverBookingNotCancelled(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(pendingBooking(), nil)

	svc := newBookingService(repo, nil, nil)
	err := svc.Recover(context.Background(), 42, 1)
	assert.ErrorIs(t, err, database.ErrNotCancelled)
}

func TestConfirmBooking(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(pendingBooking(), nil)
	repo.On("UpdateBookingStatusWithVersion", mock.Anything, int64(42), 1, models.StatusConfirmed).Return(nil)

	svc := newBookingService(repo, nil, nil)
	require.NoError(t, svc.Confirm(context.Background(), 42, 1))
	repo.AssertExpectations(t)
}

func TestReplyTarget(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(pendingBooking(), nil)

	svc := newBookingService(repo, nil, nil)

	target, err := svc.ReplyTarget(context.Background(), 42, "approved")
	require.NoError(t, err)
	assert.Equal(t, "https://crm.example.com/reply?booking_id=42&status=APPROVED", target)
}

func TestReplyTargetRejectsUnknownStatus(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(pendingBooking(), nil)

	svc := newBookingService(repo, nil, nil)

	_, err := svc.ReplyTarget(context.Background(), 42, "MAYBE")
	assert.Error(t, err)
}

func TestReplyTargetBookingMissing(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(99)).Return(nil, database.ErrNotFound)

	svc := newBookingService(repo, nil, nil)

	_, err := svc.ReplyTarget(context.Background(), 99, "APPROVED")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
