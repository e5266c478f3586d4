package models

// DiscountTier is one row of the group-discount table. Ranges are
// inclusive on both ends. List order is authoritative: when ranges
// overlap, the first structurally matching tier wins.
type DiscountTier struct {
	MinTravelers int     `yaml:"min_travelers" json:"min_travelers"`
	MaxTravelers int     `yaml:"max_travelers" json:"max_travelers"`
	Percent      float64 `yaml:"percent" json:"percent"`
}

// Contains reports whether the tier range covers the traveler count.
func (t DiscountTier) Contains(travelers int) bool {
	return travelers >= t.MinTravelers && travelers <= t.MaxTravelers
}
