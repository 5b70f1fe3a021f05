package snapshot

import (
	"time"

	"farelock/internal/domain/pricing"

	"github.com/google/uuid"
)

// Snapshot locks one priced offer to a search session for a bounded window.
// It is the single source of truth for price through the whole booking flow:
// review locks the supplier and retail fares onto it, hold and booking stamp
// their identifiers onto it, and every downstream step refuses to run once
// the window has passed.
type Snapshot struct {
	ID              uuid.UUID
	SearchSessionID string
	PriceID         string
	TripType        string
	RouteIndex      int
	ServiceType     pricing.ServiceType

	SupplierFare  float64
	FinalFare     int64
	MarkupApplied int64
	AppliedRules  []pricing.AppliedRule
	Currency      string

	ExpiresAt time.Time

	// Review state: set exactly once, never rewritten with different values.
	IsReviewed           bool
	ReviewBookingID      string
	ReviewedSupplierFare float64
	ReviewedFinalFare    int64
	FareAlert            bool
	ReviewedAt           *time.Time

	IsHeld bool
	HeldAt *time.Time

	// Confirm de-duplication marker, claimed via conditional update.
	ConfirmingAt *time.Time

	// Terminal state. Once set, the snapshot is permanent and exempt from TTL.
	FinalBookingID string
	BookedAt       *time.Time
	PNR            string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the snapshot's window has passed. A snapshot that
// reached its final booking is permanent and never expires.
func (s *Snapshot) IsExpired(now time.Time) bool {
	if s.IsTerminal() {
		return false
	}
	return !s.ExpiresAt.After(now)
}

func (s *Snapshot) IsTerminal() bool {
	return s.FinalBookingID != ""
}

// Reviewable reports whether a review may stamp bookingID onto the snapshot.
// Reviewing again with the same booking id is a no-op; a different id is a
// conflict because the review booking id is immutable once set.
func (s *Snapshot) Reviewable(bookingID string) bool {
	return !s.IsReviewed || s.ReviewBookingID == bookingID
}

// Holdable requires a completed review; expiry is checked separately because
// the caller needs to distinguish the two failures.
func (s *Snapshot) Holdable() bool {
	return s.IsReviewed && s.ReviewBookingID != ""
}

// ConfirmGuardOpen reports whether a confirm attempt may claim the snapshot:
// either no attempt has run, or the previous attempt started long enough ago
// to be presumed dead.
func (s *Snapshot) ConfirmGuardOpen(now time.Time, window time.Duration) bool {
	if s.ConfirmingAt == nil {
		return true
	}
	return s.ConfirmingAt.Before(now.Add(-window))
}
