package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusTicketed  Status = "TICKETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Record is the durable trace of a held or ticketed itinerary. Creation is
// idempotent on the supplier booking id: a retried confirm finds and returns
// the existing record instead of inserting a second one.
type Record struct {
	ID              uuid.UUID
	SnapshotID      uuid.UUID
	SearchSessionID string
	BookingID       string
	PNR             string
	Travellers      []Traveller
	ContactInfo     ContactInfo
	DeliveryInfo    DeliveryInfo
	GSTInfo         *GSTInfo
	FinalFare       int64
	Status          Status

	// Normalized per-segment references fetched from booking details.
	PNRDetails    map[string]string
	TicketNumbers map[string]string

	NotificationSent bool

	BookedAt     time.Time
	ReleasedAt   *time.Time
	PNRsReleased []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SeatHold is an ephemeral seat assignment tied to a supplier booking id.
// Holds live in a short-TTL ledger and are replaced wholesale on every
// re-selection, never merged.
type SeatHold struct {
	BookingID      string `json:"bookingId"`
	TravellerIndex int    `json:"travellerIndex"`
	SegmentID      string `json:"segmentId"`
	SeatCode       string `json:"seatCode"`
	Price          int64  `json:"price"`
}

// SeatTotal sums the hold prices that get added onto the retail fare.
func SeatTotal(holds []SeatHold) int64 {
	var total int64
	for _, h := range holds {
		total += h.Price
	}
	return total
}
