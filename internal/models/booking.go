package models

import "time"

// Booking is the immutable input of every invoice render. It is created
// and mutated server-side; the pricing and rendering layers only read it.
type Booking struct {
	ID        int64      `json:"id"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"` // pending, confirmed, cancelled
	Currency  string     `json:"currency"`
	Travelers []Traveler `json:"travelers"`
	// AuthoritativeTotal is the server-recorded final charge. Zero means
	// "not set"; any positive value takes precedence over the total
	// recomputed from the tier table.
	AuthoritativeTotal float64            `json:"authoritative_total"`
	Schedule           *ScheduleWindow    `json:"schedule,omitempty"`
	Package            PackageDescriptor  `json:"package"`
	CancelReason       string             `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Version            int64              `json:"version"`
}

// TravelerCount is the group size used for tier resolution.
func (b *Booking) TravelerCount() int {
	return len(b.Travelers)
}

// LeadTraveler returns the first traveler, the one invoice documents are
// billed to. Nil when the traveler list is empty.
func (b *Booking) LeadTraveler() *Traveler {
	if len(b.Travelers) == 0 {
		return nil
	}
	return &b.Travelers[0]
}

type Traveler struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// ScheduleWindow describes the departure the booking is attached to.
type ScheduleWindow struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	UnitPrice   float64   `json:"unit_price"` // per-person price
	TotalSeats  int64     `json:"total_seats"`
	BookedSeats int64     `json:"booked_seats"`
}

// PackageDescriptor names the purchased tour package.
type PackageDescriptor struct {
	Name         string `json:"name" yaml:"name"`
	DurationDays int    `json:"duration_days" yaml:"duration_days"`
}
