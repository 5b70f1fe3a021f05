package commands

import (
	"context"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra/cache"
	"farelock/internal/infra/events"
	"farelock/internal/infra/razorpay"
	"farelock/internal/infra/supplier"

	"github.com/google/uuid"
)

type SnapshotRepository interface {
	Create(ctx context.Context, s *snapshot.Snapshot) error
	FindByID(ctx context.Context, id uuid.UUID) (*snapshot.Snapshot, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*snapshot.Snapshot, error)
	FindByReviewBookingID(ctx context.Context, bookingID string) ([]*snapshot.Snapshot, error)
	MarkReviewed(ctx context.Context, ids []uuid.UUID, bookingID string, reviewedSupplierFare float64, reviewedFinalFare int64, fareAlert bool, now time.Time) error
	MarkHeld(ctx context.Context, bookingID string, now time.Time) error
	AdoptReviewBookingID(ctx context.Context, fromBookingID, toBookingID string, now time.Time) error
	ClaimConfirming(ctx context.Context, bookingID string, now time.Time, window time.Duration) ([]*snapshot.Snapshot, error)
	ClearConfirming(ctx context.Context, bookingID string, now time.Time) error
	MarkBooked(ctx context.Context, bookingID, finalBookingID, pnr string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PaymentRepository interface {
	CreateIfAbsent(ctx context.Context, p *payment.Payment) (*payment.Payment, bool, error)
	FindOpenByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error)
	FindByProviderOrderID(ctx context.Context, orderID string) (*payment.Payment, error)
	FindPaidByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error)
	MarkPaid(ctx context.Context, orderID, paymentID, signature string, now time.Time) (*payment.Payment, error)
	MarkFailed(ctx context.Context, orderID string, now time.Time) error
	MarkRefunded(ctx context.Context, id uuid.UUID, refundID string, amount int64, now time.Time) error
}

type BookingRepository interface {
	CreateIfAbsent(ctx context.Context, rec *booking.Record) (*booking.Record, bool, error)
	FindByBookingID(ctx context.Context, bookingID string) (*booking.Record, error)
	UpdateDetails(ctx context.Context, bookingID string, pnrDetails, ticketNumbers map[string]string, status booking.Status, now time.Time) error
	SetReleased(ctx context.Context, bookingID string, pnrs []string, status booking.Status, now time.Time) error
}

type RuleRepository interface {
	FindActive(ctx context.Context, serviceType pricing.ServiceType, region string) ([]pricing.Rule, error)
}

// SupplierGateway is the booking side of the supplier API.
type SupplierGateway interface {
	Review(ctx context.Context, priceIDs []string) (*supplier.ReviewResponse, error)
	GetSeatMap(ctx context.Context, bookingID string) ([]supplier.NormalizedSegment, error)
	HoldBooking(ctx context.Context, req supplier.BookRequest) (supplier.Outcome, error)
	InstantBook(ctx context.Context, req supplier.BookRequest, amount float64) (supplier.Outcome, *supplier.BookResponse, error)
	ValidateFare(ctx context.Context, bookingID string) (supplier.Outcome, error)
	ConfirmBooking(ctx context.Context, bookingID string, amount float64) (supplier.Outcome, error)
	GetBookingDetails(ctx context.Context, bookingID string) (*supplier.BookingDetailsResponse, error)
	ReleasePNR(ctx context.Context, bookingID string, pnrs []string) (supplier.Outcome, error)
	GetAmendmentCharges(ctx context.Context, req supplier.AmendmentRequest) (*supplier.AmendmentResponse, error)
	SubmitAmendment(ctx context.Context, req supplier.AmendmentRequest) (*supplier.AmendmentResponse, error)
	GetAmendmentDetails(ctx context.Context, amendmentID string) (*supplier.AmendmentResponse, error)
}

type PaymentProvider interface {
	CreateOrder(ctx context.Context, bookingID string, amount int64, currency string) (*razorpay.Order, error)
	RefundPayment(ctx context.Context, paymentID string, amount int64, reason string) (*razorpay.Refund, error)
	VerifySignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

type SeatLedger interface {
	Replace(ctx context.Context, bookingID string, holds []booking.SeatHold) error
	Get(ctx context.Context, bookingID string) ([]booking.SeatHold, error)
	Clear(ctx context.Context, bookingID string) error
}

type DraftStore interface {
	Save(ctx context.Context, bookingID string, draft cache.Draft) error
	Get(ctx context.Context, bookingID string) (*cache.Draft, error)
}

// EventPublisher fans lifecycle events out to the event bus. Notify also
// targets the customer notification topic.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.BookingEvent) error
	Notify(ctx context.Context, ev events.BookingEvent) error
}
