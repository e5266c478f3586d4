package pricing

import "tourbill/internal/models"

// ResolveDiscount maps a traveler count to a discount percent using the
// injected tier table. Tiers are scanned in list order and the first
// range containing the count wins, so overlapping ranges resolve by
// authoring order. Counts below 1 and empty tables yield 0 rather than
// an error: a render must always be possible.
func ResolveDiscount(travelerCount int, tiers []models.DiscountTier) float64 {
	if travelerCount < 1 {
		return 0
	}
	for _, tier := range tiers {
		if tier.Contains(travelerCount) {
			return tier.Percent
		}
	}
	return 0
}
