package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourbill/internal/invoice"
	"tourbill/internal/models"
	"tourbill/internal/worker"
)

type mockLocks struct {
	mock.Mock
}

func (m *mockLocks) TryAcquire(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, bookingID, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *mockLocks) Release(ctx context.Context, bookingID int64) error {
	return m.Called(ctx, bookingID).Error(0)
}

type mockSync struct {
	mock.Mock
}

func (m *mockSync) EnqueueTask(ctx context.Context, taskType string, bookingID int64, payload interface{}) error {
	return m.Called(ctx, taskType, bookingID, payload).Error(0)
}

func renderableBooking() *models.Booking {
	return &models.Booking{
		ID:        42,
		Reference: "TB-2025-0042",
		Status:    models.StatusConfirmed,
		Currency:  "USD",
		Travelers: []models.Traveler{
			{Name: "Alice Grant", Email: "alice@example.com"},
			{Name: "Ben Ortiz"},
			{Name: "Chloe Mair"},
			{Name: "Dan Reyes"},
			{Name: "Eve Soto"},
			{Name: "Finn Hale"},
		},
		Schedule: &models.ScheduleWindow{
			StartDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
			UnitPrice: 500,
		},
		Package:   models.PackageDescriptor{Name: "Douro Valley Wine Trail", DurationDays: 12},
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
}

func serviceTiers() []models.DiscountTier {
	return []models.DiscountTier{
		{MinTravelers: 4, MaxTravelers: 6, Percent: 10},
		{MinTravelers: 7, MaxTravelers: 10, Percent: 15},
	}
}

func newInvoiceService(repo *mockRepo, locks *mockLocks, sync *mockSync) *InvoiceService {
	logger := zerolog.Nop()
	builder := invoice.NewBuilder(
		invoice.CompanyInfo{Name: "Meridian Tours", Email: "billing@meridian.example"},
		map[string]string{"USD": "$", "EUR": "€", "GBP": "£"},
		"$",
	)

	deps := InvoiceServiceDeps{
		Repo:    repo,
		Tiers:   serviceTiers(),
		Builder: builder,
		Print:   invoice.NewPrintRenderer(),
		Vector:  invoice.NewVectorRenderer(invoice.NewLogoFetcher(time.Second, &logger), &logger),
		Sheet:   invoice.NewSpreadsheetRenderer(),
		Logger:  &logger,
	}
	if locks != nil {
		deps.Locks = locks
	}
	if sync != nil {
		deps.Sync = sync
	}
	return NewInvoiceService(deps)
}

func TestRenderPrint(t *testing.T) {
	repo := &mockRepo{}
	sync := &mockSync{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)
	sync.On("EnqueueTask", mock.Anything, worker.TaskInvoiceAudit, int64(42), mock.Anything).Return(nil)

	svc := newInvoiceService(repo, nil, sync)
	html, err := svc.RenderPrint(context.Background(), 42)
	require.NoError(t, err)

	assert.Contains(t, html, "TB-2025-0042")
	assert.Contains(t, html, "$2700.00")
	sync.AssertExpectations(t)
}

func TestRenderVector(t *testing.T) {
	repo := &mockRepo{}
	sync := &mockSync{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)
	sync.On("EnqueueTask", mock.Anything, worker.TaskInvoiceAudit, int64(42), mock.Anything).Return(nil)

	svc := newInvoiceService(repo, nil, sync)
	pdf, filename, err := svc.RenderVector(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, pdf)
	assert.True(t, strings.HasPrefix(filename, "invoice_TB-2025-0042_"))
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}

func TestRenderSpreadsheet(t *testing.T) {
	repo := &mockRepo{}
	sync := &mockSync{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)
	sync.On("EnqueueTask", mock.Anything, worker.TaskInvoiceAudit, int64(42), mock.Anything).Return(nil)

	svc := newInvoiceService(repo, nil, sync)
	data, filename, err := svc.RenderSpreadsheet(context.Background(), 42)
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	assert.Equal(t, "invoice_TB-2025-0042.xlsx", filename)
}

func TestRenderHoldsExportLock(t *testing.T) {
	repo := &mockRepo{}
	locks := &mockLocks{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)
	locks.On("TryAcquire", mock.Anything, int64(42), mock.Anything).Return(true, nil)
	locks.On("Release", mock.Anything, int64(42)).Return(nil)

	svc := newInvoiceService(repo, locks, nil)
	_, err := svc.RenderPrint(context.Background(), 42)
	require.NoError(t, err)

	locks.AssertExpectations(t)
}

func TestRenderRejectsConcurrentExport(t *testing.T) {
	repo := &mockRepo{}
	locks := &mockLocks{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)
	locks.On("TryAcquire", mock.Anything, int64(42), mock.Anything).Return(false, nil)

	svc := newInvoiceService(repo, locks, nil)
	_, err := svc.RenderPrint(context.Background(), 42)
	assert.ErrorIs(t, err, ErrExportInProgress)
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

// captureVector records the content model handed to the PDF rendition
// before delegating to the real renderer.
type captureVector struct {
	inner *invoice.VectorRenderer
	cm    *invoice.ContentModel
}

func (c *captureVector) Render(ctx context.Context, cm *invoice.ContentModel) ([]byte, string, error) {
	c.cm = cm
	return c.inner.Render(ctx, cm)
}

func TestPrintAndVectorShareFigures(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetBooking", mock.Anything, int64(42)).Return(renderableBooking(), nil)

	logger := zerolog.Nop()
	vector := &captureVector{inner: invoice.NewVectorRenderer(invoice.NewLogoFetcher(time.Second, &logger), &logger)}
	svc := NewInvoiceService(InvoiceServiceDeps{
		Repo:    repo,
		Tiers:   serviceTiers(),
		Builder: invoice.NewBuilder(
			invoice.CompanyInfo{Name: "Meridian Tours", Email: "billing@meridian.example"},
			map[string]string{"USD": "$", "EUR": "€", "GBP": "£"},
			"$",
		),
		Print:  invoice.NewPrintRenderer(),
		Vector: vector,
		Sheet:  invoice.NewSpreadsheetRenderer(),
		Logger: &logger,
	})

	pdf, _, err := svc.RenderVector(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	require.NotNil(t, vector.cm)

	html, err := svc.RenderPrint(context.Background(), 42)
	require.NoError(t, err)

	// Both renditions place the content model's display strings
	// verbatim, so every figure the PDF received must appear in the
	// HTML byte for byte.
	cm := vector.cm
	assert.Equal(t, "$3000.00", cm.Totals.Subtotal)
	assert.Equal(t, "-$300.00", cm.Totals.DiscountAmount)
	assert.Equal(t, "$2700.00", cm.Totals.Total)
	for _, figure := range []string{cm.Totals.Subtotal, cm.Totals.DiscountAmount, cm.Totals.Total} {
		assert.Contains(t, html, figure)
	}
	require.NotEmpty(t, cm.Lines)
	for _, line := range cm.Lines {
		assert.Contains(t, html, line.UnitPrice)
		assert.Contains(t, html, line.Amount)
	}
}
