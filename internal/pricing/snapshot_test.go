package pricing

import (
	"testing"

	"tourbill/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func booking(unitPrice float64, travelers int, authoritativeTotal float64) *models.Booking {
	b := &models.Booking{
		Reference:          "TB-1001",
		Currency:           "USD",
		AuthoritativeTotal: authoritativeTotal,
		Schedule:           &models.ScheduleWindow{UnitPrice: unitPrice},
	}
	for i := 0; i < travelers; i++ {
		b.Travelers = append(b.Travelers, models.Traveler{Name: "Traveler"})
	}
	return b
}

func TestBuildSnapshot_DerivedTotal(t *testing.T) {
	// unitPrice=$500, travelers=6, tiers [{4,6,10%},{7,10,15%}]
	snap := BuildSnapshot(booking(500, 6, 0), standardTiers)

	assert.Equal(t, 6, snap.TravelerCount)
	assert.True(t, snap.Subtotal.Equal(decimal.NewFromInt(3000)), "subtotal %s", snap.Subtotal)
	assert.Equal(t, 10.0, snap.DiscountPercent)
	assert.True(t, snap.DiscountAmount.Equal(decimal.NewFromInt(300)), "discount %s", snap.DiscountAmount)
	assert.True(t, snap.Total.Equal(decimal.NewFromInt(2700)), "total %s", snap.Total)
	assert.False(t, snap.AuthoritativeApplied)
}

func TestBuildSnapshot_AuthoritativeTotalWins(t *testing.T) {
	snap := BuildSnapshot(booking(500, 6, 2750), standardTiers)

	// The bottom line follows the server-recorded charge while the
	// discount line still reflects the tier table.
	assert.True(t, snap.Total.Equal(decimal.NewFromInt(2750)), "total %s", snap.Total)
	assert.Equal(t, 10.0, snap.DiscountPercent)
	assert.True(t, snap.DiscountAmount.Equal(decimal.NewFromInt(300)), "discount %s", snap.DiscountAmount)
	assert.True(t, snap.AuthoritativeApplied)
}

func TestBuildSnapshot_NoTierMatch(t *testing.T) {
	snap := BuildSnapshot(booking(500, 12, 0), standardTiers)

	assert.Equal(t, 0.0, snap.DiscountPercent)
	assert.True(t, snap.Total.Equal(snap.Subtotal))
}

func TestBuildSnapshot_MissingSchedule(t *testing.T) {
	b := booking(500, 3, 0)
	b.Schedule = nil
	snap := BuildSnapshot(b, standardTiers)

	assert.True(t, snap.UnitPrice.IsZero())
	assert.True(t, snap.Subtotal.IsZero())
	assert.True(t, snap.Total.IsZero())
}

func TestBuildSnapshot_NoTravelers(t *testing.T) {
	snap := BuildSnapshot(booking(500, 0, 0), standardTiers)

	assert.Equal(t, 0, snap.TravelerCount)
	assert.True(t, snap.Subtotal.IsZero())
}

func TestBuildSnapshot_FullPrecisionIntermediate(t *testing.T) {
	// 3 travelers at 333.33 with a 10% tier: the discount amount is
	// 99.999 and must not be rounded before display.
	tiers := []models.DiscountTier{{MinTravelers: 1, MaxTravelers: 10, Percent: 10}}
	snap := BuildSnapshot(booking(333.33, 3, 0), tiers)

	assert.Equal(t, "99.999", snap.DiscountAmount.String())
	assert.Equal(t, "899.991", snap.Total.String())
	// Rounding to 2 places happens only at format time.
	assert.Equal(t, "899.99", snap.Total.StringFixed(2))
	assert.Equal(t, "100.00", snap.DiscountAmount.StringFixed(2))
}
