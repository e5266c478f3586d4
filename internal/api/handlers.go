package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tourbill/internal/database"
	"tourbill/internal/metrics"
	"tourbill/internal/models"
	"tourbill/internal/service"
	"tourbill/internal/workflow"
)

const bookingsPrefix = "/api/v1/bookings/"

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("create_booking")

	var booking models.Booking
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&booking); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(booking.Reference) == "" {
		writeError(w, http.StatusBadRequest, "reference is required")
		return
	}

	if err := s.bookings.CreateBooking(r.Context(), &booking); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// handleBooking routes /api/v1/bookings/{id} and its sub-resources.
func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, bookingsPrefix)
	idPart, action, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	switch action {
	case "":
		s.handleGetBooking(w, r, id)
	case "invoice.html":
		s.handleInvoiceHTML(w, r, id)
	case "invoice.pdf":
		s.handleInvoicePDF(w, r, id)
	case "invoice.xlsx":
		s.handleInvoiceSpreadsheet(w, r, id)
	case "cancel":
		s.handleCancel(w, r, id)
	case "recover":
		s.handleRecover(w, r, id)
	case "reply":
		s.handleReply(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("get_booking")

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleInvoiceHTML(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("invoice_html")

	html, err := s.invoices.RenderPrint(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *HTTPServer) handleInvoicePDF(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("invoice_pdf")

	pdf, filename, err := s.invoices.RenderVector(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *HTTPServer) handleInvoiceSpreadsheet(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("invoice_xlsx")

	data, filename, err := s.invoices.RenderSpreadsheet(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("cancel_booking")

	// The body is optional. Version, when present, requests an
	// optimistic-concurrency check against that version.
	var body struct {
		Version int    `json:"version"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.Cancel(r.Context(), id, body.Version, strings.TrimSpace(body.Reason)); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusCancelled})
}

func (s *HTTPServer) handleRecover(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("recover_booking")

	var body struct {
		Version int `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.bookings.Recover(r.Context(), id, body.Version); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusPending})
}

// handleReply redirects to the reply-composer URL for a booking. The
// chosen reply status travels as a query parameter and never changes
// booking state.
func (s *HTTPServer) handleReply(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("reply_target")

	raw := r.URL.Query().Get("status")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	target, err := s.bookings.ReplyTarget(r.Context(), id, raw)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, database.ErrAlreadyCancelled),
		errors.Is(err, database.ErrNotCancelled),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, workflow.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExportInProgress):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
