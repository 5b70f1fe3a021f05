package commands

import (
	"context"
	"log/slog"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/infra"
	"farelock/internal/infra/events"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

type InstantBookCommands interface {
	InstantBook(ctx context.Context, req HoldRequest) (*ConfirmResult, error)
}

type instantBookUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	paymentRepo  PaymentRepository
	bookingRepo  BookingRepository
	gateway      SupplierGateway
	provider     PaymentProvider
	publisher    EventPublisher
	clock        clock.Clock
	logger       *slog.Logger
}

func NewInstantBookUseCase(
	snapshotRepo SnapshotRepository,
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	gateway SupplierGateway,
	provider PaymentProvider,
	publisher EventPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) InstantBookCommands {
	return &instantBookUseCaseImpl{
		snapshotRepo: snapshotRepo,
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		gateway:      gateway,
		provider:     provider,
		publisher:    publisher,
		clock:        clock,
		logger:       logger,
	}
}

// InstantBook books and pays the supplier in one call, skipping the hold
// step. It still requires the customer's captured payment up front and
// refunds it when the supplier declines.
func (u *instantBookUseCaseImpl) InstantBook(ctx context.Context, req HoldRequest) (*ConfirmResult, error) {
	if req.BookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}

	snapshots, err := u.snapshotRepo.FindByReviewBookingID(ctx, req.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrBookingNotFound)
		}
		return nil, errs.Wrap(err, "failed to load snapshots")
	}

	now := u.clock.Now()
	for _, s := range snapshots {
		if s.IsExpired(now) {
			return nil, errs.Mark(errs.New("price snapshot window passed"), ErrSnapshotExpired)
		}
	}
	if snapshots[0].IsTerminal() {
		rec, err := u.bookingRepo.FindByBookingID(ctx, snapshots[0].FinalBookingID)
		if err != nil {
			return nil, errs.Wrap(err, "failed to load confirmed booking")
		}
		return &ConfirmResult{Booking: rec, Reused: true}, nil
	}

	paid, err := u.paymentRepo.FindPaidByBookingID(ctx, req.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrPaymentRequired)
		}
		return nil, errs.Wrap(err, "failed to load payment")
	}
	if !paid.Refundable() {
		return nil, errs.Mark(errs.New("payment no longer captured"), ErrPaymentRequired)
	}

	travellers, err := booking.NormalizeTravellers(req.Travellers)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	contact := booking.NormalizeContact(req.ContactInfo)
	delivery := booking.NormalizeDelivery(req.DeliveryInfo, contact)
	gst := booking.SanitizeGST(req.GSTInfo)

	outcome, resp, err := u.gateway.InstantBook(ctx, supplier.BookRequest{
		BookingID:     req.BookingID,
		TravellerInfo: travellers,
		DeliveryInfo:  delivery,
		ContactInfo:   &contact,
		GSTInfo:       gst,
	}, snapshots[0].ReviewedSupplierFare)
	if err != nil {
		return nil, errs.Wrap(err, "supplier instant book failed")
	}

	bookingID := req.BookingID
	switch {
	case outcome.OK():
	case outcome.Duplicate():
		bookingID = outcome.BookingID
		if err := u.snapshotRepo.AdoptReviewBookingID(ctx, req.BookingID, bookingID, now); err != nil {
			return nil, errs.Wrap(err, "failed to adopt supplier booking id")
		}
	default:
		cause := errs.Mark(errs.Newf("supplier declined instant book: %v", outcome.Errors), ErrSupplierRejected)
		return nil, u.refundAndFail(ctx, req.BookingID, paid, cause)
	}

	var pnr string
	if resp != nil {
		pnr = resp.PNR
	}
	if err := u.snapshotRepo.MarkBooked(ctx, bookingID, bookingID, pnr, now); err != nil && !infra.IsKind(err, infra.KindConflict) {
		return nil, errs.Wrap(err, "failed to mark snapshots booked")
	}

	rec := &booking.Record{
		ID:              uuid.New(),
		SnapshotID:      snapshots[0].ID,
		SearchSessionID: snapshots[0].SearchSessionID,
		BookingID:       bookingID,
		PNR:             pnr,
		Travellers:      travellers,
		ContactInfo:     contact,
		DeliveryInfo:    delivery,
		GSTInfo:         gst,
		FinalFare:       snapshots[0].ReviewedFinalFare,
		Status:          booking.StatusBooked,
		BookedAt:        now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	stored, reused, err := u.bookingRepo.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, errs.Wrap(err, "failed to persist booking record")
	}

	if !reused {
		_ = u.publisher.Notify(ctx, events.BookingEvent{
			Event:      events.EventBookingTicketed,
			BookingID:  bookingID,
			SnapshotID: snapshots[0].ID.String(),
			OccurredAt: now,
			Payload:    map[string]any{"pnr": pnr, "instant": true},
		})
	}
	return &ConfirmResult{Booking: stored, Reused: reused}, nil
}

func (u *instantBookUseCaseImpl) refundAndFail(ctx context.Context, bookingID string, paid *payment.Payment, cause error) error {
	if !paid.Refundable() {
		return &CompensationError{Refunded: true, RefundID: paid.RefundID, Cause: cause}
	}

	refund, err := u.provider.RefundPayment(ctx, paid.ProviderPaymentID, paid.Amount, "instant booking failed")
	if err != nil {
		u.logger.Error("compensating refund failed",
			slog.String("booking_id", bookingID),
			slog.String("payment_id", paid.ProviderPaymentID),
			slog.String("error", err.Error()),
		)
		return &CompensationError{Refunded: false, Cause: errs.Mark(cause, ErrRefundFailed)}
	}
	if err := u.paymentRepo.MarkRefunded(ctx, paid.ID, refund.ID, paid.Amount, u.clock.Now()); err != nil {
		u.logger.Error("failed to record refund", slog.String("refund_id", refund.ID), slog.String("error", err.Error()))
	}
	return &CompensationError{Refunded: true, RefundID: refund.ID, Cause: cause}
}
