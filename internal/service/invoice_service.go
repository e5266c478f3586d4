package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tourbill/internal/domain"
	"tourbill/internal/events"
	"tourbill/internal/invoice"
	"tourbill/internal/metrics"
	"tourbill/internal/models"
	"tourbill/internal/pricing"
	"tourbill/internal/worker"
)

// ErrExportInProgress means another export already holds this
// booking's render lock.
var ErrExportInProgress = errors.New("an export for this booking is already in progress")

const (
	RenditionHTML        = "html"
	RenditionPDF         = "pdf"
	RenditionSpreadsheet = "xlsx"
)

// Renderers turn one shared content model into its renditions; the
// service never hands a rendition anything the others cannot see.
type PrintRenderer interface {
	Render(cm *invoice.ContentModel) (string, error)
}

type VectorRenderer interface {
	Render(ctx context.Context, cm *invoice.ContentModel) ([]byte, string, error)
}

type SpreadsheetRenderer interface {
	Render(cm *invoice.ContentModel) ([]byte, error)
}

// InvoiceService rebuilds the pricing snapshot and content model on
// every render so each document reflects current booking state.
type InvoiceService struct {
	repo     domain.Repository
	locks    domain.LockRepository
	sync     domain.SyncWorker
	eventBus domain.EventPublisher
	tiers    []models.DiscountTier
	builder  *invoice.Builder
	print    PrintRenderer
	vector   VectorRenderer
	sheet    SpreadsheetRenderer
	lockTTL  time.Duration
	logger   *zerolog.Logger
}

type InvoiceServiceDeps struct {
	Repo     domain.Repository
	Locks    domain.LockRepository
	Sync     domain.SyncWorker
	EventBus domain.EventPublisher
	Tiers    []models.DiscountTier
	Builder  *invoice.Builder
	Print    PrintRenderer
	Vector   VectorRenderer
	Sheet    SpreadsheetRenderer
	LockTTL  time.Duration
	Logger   *zerolog.Logger
}

func NewInvoiceService(deps InvoiceServiceDeps) *InvoiceService {
	if deps.LockTTL <= 0 {
		deps.LockTTL = models.ExportLockTTLSeconds * time.Second
	}
	return &InvoiceService{
		repo:     deps.Repo,
		locks:    deps.Locks,
		sync:     deps.Sync,
		eventBus: deps.EventBus,
		tiers:    deps.Tiers,
		builder:  deps.Builder,
		print:    deps.Print,
		vector:   deps.Vector,
		sheet:    deps.Sheet,
		lockTTL:  deps.LockTTL,
		logger:   deps.Logger,
	}
}

// RenderPrint produces the self-contained HTML document.
func (s *InvoiceService) RenderPrint(ctx context.Context, bookingID int64) (string, error) {
	booking, cm, release, err := s.prepare(ctx, bookingID, RenditionHTML)
	if err != nil {
		return "", err
	}
	defer release()

	started := time.Now()
	html, err := s.print.Render(cm)
	if err != nil {
		metrics.IncRender(RenditionHTML, "error")
		return "", fmt.Errorf("render print invoice: %w", err)
	}
	metrics.IncRender(RenditionHTML, "ok")
	metrics.ObserveRenderDuration(RenditionHTML, time.Since(started).Seconds())

	s.afterRender(ctx, booking, cm, RenditionHTML)
	return html, nil
}

// RenderVector produces the fixed-layout PDF and its download filename.
func (s *InvoiceService) RenderVector(ctx context.Context, bookingID int64) ([]byte, string, error) {
	booking, cm, release, err := s.prepare(ctx, bookingID, RenditionPDF)
	if err != nil {
		return nil, "", err
	}
	defer release()

	started := time.Now()
	pdf, filename, err := s.vector.Render(ctx, cm)
	if err != nil {
		metrics.IncRender(RenditionPDF, "error")
		return nil, "", fmt.Errorf("render vector invoice: %w", err)
	}
	metrics.IncRender(RenditionPDF, "ok")
	metrics.ObserveRenderDuration(RenditionPDF, time.Since(started).Seconds())

	s.afterRender(ctx, booking, cm, RenditionPDF)
	return pdf, filename, nil
}

// RenderSpreadsheet produces the xlsx rendition.
func (s *InvoiceService) RenderSpreadsheet(ctx context.Context, bookingID int64) ([]byte, string, error) {
	booking, cm, release, err := s.prepare(ctx, bookingID, RenditionSpreadsheet)
	if err != nil {
		return nil, "", err
	}
	defer release()

	started := time.Now()
	data, err := s.sheet.Render(cm)
	if err != nil {
		metrics.IncRender(RenditionSpreadsheet, "error")
		return nil, "", fmt.Errorf("render spreadsheet invoice: %w", err)
	}
	metrics.IncRender(RenditionSpreadsheet, "ok")
	metrics.ObserveRenderDuration(RenditionSpreadsheet, time.Since(started).Seconds())

	s.afterRender(ctx, booking, cm, RenditionSpreadsheet)
	return data, fmt.Sprintf("invoice_%s.xlsx", booking.Reference), nil
}

// prepare loads the booking, takes the export lock and builds the
// content model. The returned release func must be called when the
// render finishes, successful or not.
func (s *InvoiceService) prepare(ctx context.Context, bookingID int64, rendition string) (*models.Booking, *invoice.ContentModel, func(), error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, nil, err
	}

	release := func() {}
	if s.locks != nil {
		ok, err := s.locks.TryAcquire(ctx, bookingID, s.lockTTL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("acquire export lock: %w", err)
		}
		if !ok {
			metrics.IncLockConflict()
			return nil, nil, nil, ErrExportInProgress
		}
		release = func() {
			if err := s.locks.Release(context.WithoutCancel(ctx), bookingID); err != nil {
				s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("Failed to release export lock")
			}
		}
	}

	snap := pricing.BuildSnapshot(booking, s.tiers)
	cm := s.builder.Build(booking, snap)

	s.logger.Debug().
		Int64("booking_id", bookingID).
		Str("rendition", rendition).
		Str("total", cm.Totals.Total).
		Msg("Prepared invoice content")

	return booking, cm, release, nil
}

func (s *InvoiceService) afterRender(ctx context.Context, booking *models.Booking, cm *invoice.ContentModel, rendition string) {
	if s.eventBus != nil {
		err := s.eventBus.PublishJSON(events.EventInvoiceRendered, events.InvoiceEventPayload{
			BookingID:     booking.ID,
			Reference:     booking.Reference,
			InvoiceNumber: cm.InvoiceNumber,
			Rendition:     rendition,
			Total:         cm.Totals.Total,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish invoice event")
		}
	}

	if s.sync != nil {
		entry := models.AuditEntry{
			BookingID:     booking.ID,
			Reference:     booking.Reference,
			Status:        booking.Status,
			InvoiceNumber: cm.InvoiceNumber,
			Rendition:     rendition,
			Total:         cm.Totals.Total,
			RenderedAt:    time.Now().UTC(),
		}
		if err := s.sync.EnqueueTask(ctx, worker.TaskInvoiceAudit, booking.ID, entry); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to enqueue audit task")
		}
	}
}
