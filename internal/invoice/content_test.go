package invoice

import (
	"testing"
	"time"

	"tourbill/internal/models"
	"tourbill/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCompany = CompanyInfo{
	Name:    "Meridian Tours",
	Address: "14 Harbor Lane, Lisbon",
	Email:   "billing@meridiantours.example",
	Phone:   "+351 21 000 0000",
	LogoURL: "https://cdn.example.com/logo.png",
}

var testSymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£"}

var testTiers = []models.DiscountTier{
	{MinTravelers: 4, MaxTravelers: 6, Percent: 10},
	{MinTravelers: 7, MaxTravelers: 10, Percent: 15},
}

func fixtureBooking() *models.Booking {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:        42,
		Reference: "TB-2025-0042",
		Status:    models.StatusConfirmed,
		Currency:  "USD",
		Travelers: []models.Traveler{
			{Name: "Alice Grant", Email: "alice@example.com", Phone: "+1 202 555 0101", Country: "US"},
			{Name: "Bob Ito"}, {Name: "Carol Mbeki"}, {Name: "Dan Petrov"},
			{Name: "Eve Liang"}, {Name: "Frank Okafor"},
		},
		Schedule: &models.ScheduleWindow{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, 12),
			UnitPrice: 500,
		},
		Package:   models.PackageDescriptor{Name: "Douro Valley Wine Trail", DurationDays: 12},
		UpdatedAt: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func buildFixtureContent(t *testing.T) *ContentModel {
	t.Helper()
	b := fixtureBooking()
	snap := pricing.BuildSnapshot(b, testTiers)
	return NewBuilder(testCompany, testSymbols, "$").Build(b, snap)
}

func TestBuild_Totals(t *testing.T) {
	cm := buildFixtureContent(t)

	assert.Equal(t, "$", cm.Totals.CurrencySymbol)
	assert.Equal(t, "$3000.00", cm.Totals.Subtotal)
	assert.Equal(t, "Group discount (10%)", cm.Totals.DiscountLabel)
	assert.Equal(t, "-$300.00", cm.Totals.DiscountAmount)
	assert.Equal(t, "$2700.00", cm.Totals.Total)
}

func TestBuild_AuthoritativeTotalKeepsDiscountLine(t *testing.T) {
	b := fixtureBooking()
	b.AuthoritativeTotal = 2750
	snap := pricing.BuildSnapshot(b, testTiers)
	cm := NewBuilder(testCompany, testSymbols, "$").Build(b, snap)

	// Known, deliberate inconsistency: the bottom line follows the
	// authoritative charge while the discount line stays tier-derived.
	assert.Equal(t, "$2750.00", cm.Totals.Total)
	assert.Equal(t, "Group discount (10%)", cm.Totals.DiscountLabel)
	assert.Equal(t, "-$300.00", cm.Totals.DiscountAmount)
}

func TestBuild_HeaderAndBillTo(t *testing.T) {
	cm := buildFixtureContent(t)

	assert.Equal(t, "TB-2025-0042", cm.InvoiceNumber)
	assert.Equal(t, "2025-05-01", cm.IssueDate)
	assert.Equal(t, "2025-06-22", cm.DueDate)
	assert.Equal(t, "Alice Grant", cm.BillTo.Name)
	assert.Len(t, cm.TravelerNames, 6)

	require.Len(t, cm.Lines, 1)
	line := cm.Lines[0]
	assert.Equal(t, "Douro Valley Wine Trail", line.Description)
	assert.Equal(t, "6", line.Travelers)
	assert.Equal(t, "12 days", line.Duration)
	assert.Equal(t, "$500.00", line.UnitPrice)
	assert.Equal(t, "$3000.00", line.Amount)
}

func TestBuild_DegradesToPlaceholders(t *testing.T) {
	b := &models.Booking{Status: models.StatusPending, Currency: "XXX"}
	snap := pricing.BuildSnapshot(b, nil)
	cm := NewBuilder(testCompany, testSymbols, "$").Build(b, snap)

	assert.Equal(t, notAvailable, cm.InvoiceNumber)
	assert.Equal(t, notAvailable, cm.IssueDate)
	assert.Equal(t, notAvailable, cm.DueDate)
	assert.Equal(t, notAvailable, cm.BillTo.Name)
	require.Len(t, cm.Lines, 1)
	assert.Equal(t, notAvailable, cm.Lines[0].Description)
	assert.Equal(t, notAvailable, cm.Lines[0].Duration)
	assert.Equal(t, "$0.00", cm.Totals.Subtotal)
	// Unknown currency code falls back to the default symbol.
	assert.Equal(t, "$", cm.Totals.CurrencySymbol)
}

func TestBuild_CurrencySymbols(t *testing.T) {
	builder := NewBuilder(testCompany, testSymbols, "$")
	for code, want := range map[string]string{"USD": "$", "eur": "€", "GBP": "£", "JPY": "$"} {
		b := fixtureBooking()
		b.Currency = code
		cm := builder.Build(b, pricing.BuildSnapshot(b, testTiers))
		assert.Equal(t, want, cm.Totals.CurrencySymbol, "currency %s", code)
	}
}
