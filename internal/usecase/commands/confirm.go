package commands

import (
	"context"
	"log/slog"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/infra/events"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/backoff"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

type ConfirmResult struct {
	Booking *booking.Record
	// Reused reports the booking was already confirmed by an earlier attempt
	// and the stored record was returned.
	Reused bool
}

type ConfirmCommands interface {
	ConfirmBooking(ctx context.Context, bookingID string) (*ConfirmResult, error)
}

type confirmUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	paymentRepo  PaymentRepository
	bookingRepo  BookingRepository
	gateway      SupplierGateway
	provider     PaymentProvider
	seats        SeatLedger
	drafts       DraftStore
	publisher    EventPublisher
	cfg          config.BookingConfig
	clock        clock.Clock
	logger       *slog.Logger
}

func NewConfirmUseCase(
	snapshotRepo SnapshotRepository,
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	gateway SupplierGateway,
	provider PaymentProvider,
	seats SeatLedger,
	drafts DraftStore,
	publisher EventPublisher,
	cfg config.BookingConfig,
	clock clock.Clock,
	logger *slog.Logger,
) ConfirmCommands {
	return &confirmUseCaseImpl{
		snapshotRepo: snapshotRepo,
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		gateway:      gateway,
		provider:     provider,
		seats:        seats,
		drafts:       drafts,
		publisher:    publisher,
		cfg:          cfg,
		clock:        clock,
		logger:       logger,
	}
}

// ConfirmBooking turns a held, paid booking into a ticketed one. The flow:
// claim the confirm guard, check the captured payment, validate the fare,
// submit the reviewed supplier fare to the supplier, then poll until the
// order reaches its ticketed status. Any failure after payment capture
// triggers a compensating refund; the returned CompensationError reports
// whether the refund went through.
func (u *confirmUseCaseImpl) ConfirmBooking(ctx context.Context, bookingID string) (*ConfirmResult, error) {
	if bookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}

	now := u.clock.Now()
	snapshots, err := u.snapshotRepo.ClaimConfirming(ctx, bookingID, now, u.cfg.ConfirmGuardWindow)
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrBookingNotFound)
		case infra.IsKind(err, infra.KindConflict):
			return nil, errs.Mark(err, ErrConfirmInProgress)
		}
		return nil, errs.Wrap(err, "failed to claim confirm guard")
	}

	if snapshots[0].IsTerminal() {
		return u.reusedResult(ctx, snapshots[0].FinalBookingID)
	}

	for _, s := range snapshots {
		if s.IsExpired(now) {
			u.releaseGuard(ctx, bookingID)
			return nil, errs.Mark(errs.New("price snapshot window passed"), ErrSnapshotExpired)
		}
	}

	paid, err := u.paymentRepo.FindPaidByBookingID(ctx, bookingID)
	if err != nil {
		u.releaseGuard(ctx, bookingID)
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrPaymentRequired)
		}
		return nil, errs.Wrap(err, "failed to load payment")
	}
	if !paid.Refundable() {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Mark(errs.New("payment no longer captured"), ErrPaymentRequired)
	}
	if paid.Amount < snapshots[0].ReviewedFinalFare {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Mark(errs.New("captured amount below reviewed fare"), ErrPaymentRequired)
	}

	details, err := u.gateway.GetBookingDetails(ctx, bookingID)
	if err != nil {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Wrap(err, "failed to fetch booking details")
	}
	if details.Order.Status == supplier.OrderStatusSuccess {
		return u.persistTicketed(ctx, bookingID, snapshots, details)
	}
	if !supplier.ConfirmablePreTicket(details.Order.Status) {
		return nil, u.compensate(ctx, bookingID, paid,
			errs.Mark(errs.Newf("order not confirmable from status %s", details.Order.Status), ErrSupplierRejected))
	}

	if outcome, err := u.gateway.ValidateFare(ctx, bookingID); err != nil {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Wrap(err, "supplier fare validation failed")
	} else if outcome.Rejected() {
		return nil, u.compensate(ctx, bookingID, paid,
			errs.Mark(errs.Newf("fare validation declined: %v", outcome.Errors), ErrSupplierRejected))
	}

	// The supplier is owed its own reviewed fare, not what the customer paid.
	outcome, err := u.gateway.ConfirmBooking(ctx, bookingID, snapshots[0].ReviewedSupplierFare)
	if err != nil {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Wrap(err, "supplier confirm failed")
	}
	if outcome.Rejected() {
		return nil, u.compensate(ctx, bookingID, paid,
			errs.Mark(errs.Newf("supplier declined confirm: %v", outcome.Errors), ErrSupplierRejected))
	}

	ticketed, err := u.pollUntilTicketed(ctx, bookingID)
	if err != nil {
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Wrap(err, "ticket polling aborted")
	}
	if ticketed == nil {
		// The confirm was already submitted; the ticket may still issue.
		// Keep the payment captured and let the caller retry the confirm.
		u.releaseGuard(ctx, bookingID)
		return nil, errs.Mark(errs.New("order never reached ticketed status"), ErrTicketingTimeout)
	}

	return u.persistTicketed(ctx, bookingID, snapshots, ticketed)
}

func (u *confirmUseCaseImpl) pollUntilTicketed(ctx context.Context, bookingID string) (*supplier.BookingDetailsResponse, error) {
	policy := backoff.Policy{
		MaxAttempts: u.cfg.TicketPollAttempts,
		Interval:    u.cfg.TicketPollInterval,
	}

	var ticketed *supplier.BookingDetailsResponse
	done, err := policy.Retry(ctx, u.clock, func(int) (bool, error) {
		details, err := u.gateway.GetBookingDetails(ctx, bookingID)
		if err != nil {
			return false, err
		}
		if details.Order.Status == supplier.OrderStatusSuccess {
			ticketed = details
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, nil
	}
	return ticketed, nil
}

func (u *confirmUseCaseImpl) persistTicketed(
	ctx context.Context,
	bookingID string,
	snapshots []*snapshot.Snapshot,
	details *supplier.BookingDetailsResponse,
) (*ConfirmResult, error) {
	now := u.clock.Now()
	pnr := details.Order.PNR

	err := u.snapshotRepo.MarkBooked(ctx, bookingID, bookingID, pnr, now)
	if err != nil && !infra.IsKind(err, infra.KindConflict) {
		return nil, errs.Wrap(err, "failed to mark snapshots booked")
	}

	rec := &booking.Record{
		ID:              uuid.New(),
		SnapshotID:      snapshots[0].ID,
		SearchSessionID: snapshots[0].SearchSessionID,
		BookingID:       bookingID,
		PNR:             pnr,
		FinalFare:       snapshots[0].ReviewedFinalFare,
		Status:          booking.StatusTicketed,
		PNRDetails:      details.PNRBySegment(),
		TicketNumbers:   details.TicketsBySegment(),
		BookedAt:        now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if draft, err := u.drafts.Get(ctx, bookingID); err == nil && draft != nil {
		rec.Travellers = draft.Travellers
		rec.ContactInfo = draft.ContactInfo
		rec.DeliveryInfo = draft.DeliveryInfo
		rec.GSTInfo = draft.GSTInfo
	}

	stored, reused, err := u.bookingRepo.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, errs.Wrap(err, "failed to persist booking record")
	}

	if err := u.seats.Clear(ctx, bookingID); err != nil {
		u.logger.Warn("failed to clear seat holds", slog.String("booking_id", bookingID), slog.String("error", err.Error()))
	}

	if !reused {
		_ = u.publisher.Notify(ctx, events.BookingEvent{
			Event:      events.EventBookingTicketed,
			BookingID:  bookingID,
			SnapshotID: snapshots[0].ID.String(),
			OccurredAt: now,
			Payload: map[string]any{
				"pnr":       pnr,
				"finalFare": stored.FinalFare,
			},
		})
	}
	return &ConfirmResult{Booking: stored, Reused: reused}, nil
}

func (u *confirmUseCaseImpl) reusedResult(ctx context.Context, finalBookingID string) (*ConfirmResult, error) {
	rec, err := u.bookingRepo.FindByBookingID(ctx, finalBookingID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load confirmed booking")
	}
	return &ConfirmResult{Booking: rec, Reused: true}, nil
}

// compensate refunds the captured payment after an unrecoverable confirm
// failure and releases the guard so the caller can retry a fresh flow.
func (u *confirmUseCaseImpl) compensate(ctx context.Context, bookingID string, paid *payment.Payment, cause error) error {
	u.releaseGuard(ctx, bookingID)

	if !paid.Refundable() {
		return &CompensationError{Refunded: true, RefundID: paid.RefundID, Cause: cause}
	}

	refund, err := u.provider.RefundPayment(ctx, paid.ProviderPaymentID, paid.Amount, "booking confirmation failed")
	if err != nil {
		u.logger.Error("compensating refund failed",
			slog.String("booking_id", bookingID),
			slog.String("payment_id", paid.ProviderPaymentID),
			slog.String("error", err.Error()),
		)
		return &CompensationError{Refunded: false, Cause: errs.Mark(cause, ErrRefundFailed)}
	}

	now := u.clock.Now()
	if err := u.paymentRepo.MarkRefunded(ctx, paid.ID, refund.ID, paid.Amount, now); err != nil {
		u.logger.Error("failed to record refund", slog.String("refund_id", refund.ID), slog.String("error", err.Error()))
	}

	_ = u.publisher.Notify(ctx, events.BookingEvent{
		Event:      events.EventBookingFailed,
		BookingID:  bookingID,
		OccurredAt: now,
		Payload: map[string]any{
			"refunded": true,
			"refundId": refund.ID,
		},
	})
	return &CompensationError{Refunded: true, RefundID: refund.ID, Cause: cause}
}

func (u *confirmUseCaseImpl) releaseGuard(ctx context.Context, bookingID string) {
	if err := u.snapshotRepo.ClearConfirming(ctx, bookingID, u.clock.Now()); err != nil {
		u.logger.Warn("failed to clear confirm guard", slog.String("booking_id", bookingID), slog.String("error", err.Error()))
	}
}
