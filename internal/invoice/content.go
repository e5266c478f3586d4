package invoice

import (
	"strconv"
	"strings"

	"tourbill/internal/models"
	"tourbill/internal/pricing"
)

// notAvailable is the placeholder for fields the booking cannot supply.
const notAvailable = "N/A"

const dateLayout = "2006-01-02"

// CompanyInfo is the issuer identity block of every invoice.
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
	Phone   string
	LogoURL string
}

// ContentModel is the format-neutral, fully resolved invoice. Every
// number in it is already a display string; renderers place these
// strings and never recompute or reformat them, which is what keeps the
// print and vector documents figure-identical.
type ContentModel struct {
	Company       CompanyInfo
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Status        string
	BillTo        BillTo
	TravelerNames []string
	Lines         []LineItem
	Totals        Totals
}

// BillTo identifies the lead traveler the invoice is addressed to.
type BillTo struct {
	Name    string
	Email   string
	Phone   string
	Country string
}

type LineItem struct {
	Description string
	Travelers   string
	Duration    string
	UnitPrice   string
	Amount      string
}

type Totals struct {
	CurrencySymbol string
	Subtotal       string
	DiscountLabel  string
	DiscountAmount string // signed, e.g. "-$300.00"
	Total          string
}

// Builder turns bookings plus pricing snapshots into content models.
// The currency symbol table is injected configuration rather than a
// package constant so tests can pin it down.
type Builder struct {
	company       CompanyInfo
	symbols       map[string]string
	defaultSymbol string
}

func NewBuilder(company CompanyInfo, symbols map[string]string, defaultSymbol string) *Builder {
	if defaultSymbol == "" {
		defaultSymbol = "$"
	}
	return &Builder{company: company, symbols: symbols, defaultSymbol: defaultSymbol}
}

// Build assembles the content model. It never fails: missing booking
// fields degrade to placeholders so a document can always be produced.
func (b *Builder) Build(booking *models.Booking, snap pricing.Snapshot) *ContentModel {
	symbol := b.currencySymbol(booking.Currency)

	cm := &ContentModel{
		Company:       b.company,
		InvoiceNumber: booking.Reference,
		IssueDate:     notAvailable,
		DueDate:       notAvailable,
		Status:        booking.Status,
	}
	if cm.InvoiceNumber == "" {
		cm.InvoiceNumber = notAvailable
	}
	if !booking.UpdatedAt.IsZero() {
		cm.IssueDate = booking.UpdatedAt.Format(dateLayout)
	}
	if booking.Schedule != nil && !booking.Schedule.EndDate.IsZero() {
		cm.DueDate = booking.Schedule.EndDate.Format(dateLayout)
	}

	if lead := booking.LeadTraveler(); lead != nil {
		cm.BillTo = BillTo{
			Name:    lead.Name,
			Email:   lead.Email,
			Phone:   lead.Phone,
			Country: lead.Country,
		}
	} else {
		cm.BillTo = BillTo{Name: notAvailable}
	}
	for _, tr := range booking.Travelers {
		cm.TravelerNames = append(cm.TravelerNames, tr.Name)
	}

	description := booking.Package.Name
	if description == "" {
		description = notAvailable
	}
	duration := notAvailable
	if booking.Package.DurationDays > 0 {
		duration = strconv.Itoa(booking.Package.DurationDays) + " days"
	}
	cm.Lines = []LineItem{{
		Description: description,
		Travelers:   strconv.Itoa(snap.TravelerCount),
		Duration:    duration,
		UnitPrice:   formatMoney(symbol, snap.UnitPrice.StringFixed(2)),
		Amount:      formatMoney(symbol, snap.Subtotal.StringFixed(2)),
	}}

	cm.Totals = Totals{
		CurrencySymbol: symbol,
		Subtotal:       formatMoney(symbol, snap.Subtotal.StringFixed(2)),
		DiscountLabel:  "Group discount (" + formatPercent(snap.DiscountPercent) + ")",
		DiscountAmount: "-" + formatMoney(symbol, snap.DiscountAmount.StringFixed(2)),
		Total:          formatMoney(symbol, snap.Total.StringFixed(2)),
	}

	return cm
}

func (b *Builder) currencySymbol(code string) string {
	if symbol, ok := b.symbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return symbol
	}
	return b.defaultSymbol
}

func formatMoney(symbol, fixed string) string {
	return symbol + fixed
}

func formatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}
