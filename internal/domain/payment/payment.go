package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusPaid     Status = "PAID"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

type RefundStatus string

const (
	RefundNone      RefundStatus = "NONE"
	RefundCompleted RefundStatus = "COMPLETED"
)

// Payment is one provider order tied 1:1 to a supplier booking id. At most
// one CREATED payment may exist per booking id; order creation reuses it
// rather than opening a second one.
type Payment struct {
	ID         uuid.UUID
	BookingID  string
	SnapshotID uuid.UUID
	Amount     int64
	Currency   string
	Status     Status

	ProviderOrderID   string
	ProviderPaymentID string
	ProviderSignature string

	RefundStatus   RefundStatus
	RefundID       string
	RefundedAmount int64

	CreatedAt  time.Time
	PaidAt     *time.Time
	RefundedAt *time.Time
}

// Refundable reports whether a compensating refund may target this payment.
func (p *Payment) Refundable() bool {
	return p.Status == StatusPaid && p.RefundStatus != RefundCompleted
}
