package models

import "time"

// AuditEntry is one row in the invoice-audit spreadsheet.
type AuditEntry struct {
	BookingID     int64     `json:"booking_id"`
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	InvoiceNumber string    `json:"invoice_number"`
	Rendition     string    `json:"rendition"`
	Total         string    `json:"total"`
	RenderedAt    time.Time `json:"rendered_at"`
}
