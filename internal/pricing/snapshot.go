package pricing

import (
	"github.com/shopspring/decimal"

	"tourbill/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is the financially authoritative view of a booking, rebuilt
// on every render request and never persisted. All amounts keep full
// precision; rounding happens only at display formatting.
type Snapshot struct {
	TravelerCount   int
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountPercent float64
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	// AuthoritativeApplied marks that Total came from the server-recorded
	// charge rather than subtotal minus discount. When set, the discount
	// line and the bottom line may disagree; that asymmetry is kept on
	// purpose so the discount stays visible for transparency.
	AuthoritativeApplied bool
}

// BuildSnapshot derives the pricing snapshot from a booking and a tier
// table. It never fails: a missing schedule degrades to a zero unit
// price and an empty traveler list to a zero subtotal.
func BuildSnapshot(booking *models.Booking, tiers []models.DiscountTier) Snapshot {
	var unitPrice decimal.Decimal
	if booking.Schedule != nil {
		unitPrice = decimal.NewFromFloat(booking.Schedule.UnitPrice)
	}

	count := booking.TravelerCount()
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(count)))

	percent := ResolveDiscount(count, tiers)
	discountAmount := subtotal.Mul(decimal.NewFromFloat(percent)).Div(hundred)

	snapshot := Snapshot{
		TravelerCount:   count,
		UnitPrice:       unitPrice,
		Subtotal:        subtotal,
		DiscountPercent: percent,
		DiscountAmount:  discountAmount,
	}

	if booking.AuthoritativeTotal > 0 {
		snapshot.Total = decimal.NewFromFloat(booking.AuthoritativeTotal)
		snapshot.AuthoritativeApplied = true
	} else {
		snapshot.Total = subtotal.Sub(discountAmount)
	}

	return snapshot
}
