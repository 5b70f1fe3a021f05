package commands

import (
	"context"
	"log/slog"

	"farelock/internal/domain/booking"
	"farelock/internal/infra"
	"farelock/internal/infra/events"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"
)

type CancellationRequest struct {
	BookingID string
	Remarks   string
	Trips     []supplier.AmendmentTrip
	// RefundableAmount is what the customer gets back, quoted to them from
	// GetCancellationCharges before they committed. The supplier's own quote
	// is not re-read here so the customer is never refunded a figure they
	// did not see.
	RefundableAmount int64
}

type CancellationResult struct {
	AmendmentID string
	Refunded    bool
	RefundID    string
}

type CancelCommands interface {
	GetCancellationCharges(ctx context.Context, bookingID string, trips []supplier.AmendmentTrip) (*supplier.AmendmentResponse, error)
	SubmitCancellation(ctx context.Context, req CancellationRequest) (*CancellationResult, error)
	GetCancellationStatus(ctx context.Context, amendmentID string) (*supplier.AmendmentResponse, error)
	ReleasePNR(ctx context.Context, bookingID string, pnrs []string) error
}

type cancelUseCaseImpl struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	gateway     SupplierGateway
	provider    PaymentProvider
	publisher   EventPublisher
	clock       clock.Clock
	logger      *slog.Logger
}

func NewCancelUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	gateway SupplierGateway,
	provider PaymentProvider,
	publisher EventPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) CancelCommands {
	return &cancelUseCaseImpl{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		provider:    provider,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
	}
}

func (u *cancelUseCaseImpl) GetCancellationCharges(ctx context.Context, bookingID string, trips []supplier.AmendmentTrip) (*supplier.AmendmentResponse, error) {
	if bookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}
	resp, err := u.gateway.GetAmendmentCharges(ctx, supplier.AmendmentRequest{
		BookingID: bookingID,
		Type:      supplier.AmendmentCancellation,
		Trips:     trips,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to fetch cancellation charges")
	}
	if !resp.Status.Success {
		return nil, errs.Mark(errs.New("supplier declined charges lookup"), ErrSupplierRejected)
	}
	return resp, nil
}

// SubmitCancellation files the cancellation with the supplier and, when a
// captured payment exists, refunds the quoted amount. A refund failure does
// not undo the cancellation; it is reported for manual follow-up.
func (u *cancelUseCaseImpl) SubmitCancellation(ctx context.Context, req CancellationRequest) (*CancellationResult, error) {
	if req.BookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}
	if req.RefundableAmount < 0 {
		return nil, errs.Mark(errs.New("refundable amount must not be negative"), ErrValidation)
	}

	rec, err := u.bookingRepo.FindByBookingID(ctx, req.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrBookingNotFound)
		}
		return nil, errs.Wrap(err, "failed to load booking record")
	}
	if rec.Status == booking.StatusCancelled {
		return nil, errs.Mark(errs.New("booking already cancelled"), ErrValidation)
	}

	resp, err := u.gateway.SubmitAmendment(ctx, supplier.AmendmentRequest{
		BookingID: req.BookingID,
		Type:      supplier.AmendmentCancellation,
		Remarks:   req.Remarks,
		Trips:     req.Trips,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to submit cancellation")
	}
	if !resp.Status.Success {
		return nil, errs.Mark(errs.Newf("supplier declined cancellation: %v", resp.Errors), ErrSupplierRejected)
	}

	now := u.clock.Now()
	if err := u.bookingRepo.UpdateDetails(ctx, req.BookingID, rec.PNRDetails, rec.TicketNumbers, booking.StatusCancelled, now); err != nil {
		u.logger.Error("failed to mark booking cancelled", slog.String("booking_id", req.BookingID), slog.String("error", err.Error()))
	}

	result := &CancellationResult{AmendmentID: resp.AmendmentID}
	if req.RefundableAmount > 0 {
		result.Refunded, result.RefundID = u.refundCancellation(ctx, req.BookingID, req.RefundableAmount)
	}

	_ = u.publisher.Notify(ctx, events.BookingEvent{
		Event:      events.EventBookingRefunded,
		BookingID:  req.BookingID,
		OccurredAt: now,
		Payload: map[string]any{
			"amendmentId": result.AmendmentID,
			"refunded":    result.Refunded,
			"amount":      req.RefundableAmount,
		},
	})
	return result, nil
}

func (u *cancelUseCaseImpl) refundCancellation(ctx context.Context, bookingID string, amount int64) (bool, string) {
	paid, err := u.paymentRepo.FindPaidByBookingID(ctx, bookingID)
	if err != nil || !paid.Refundable() {
		return false, ""
	}
	if amount > paid.Amount {
		amount = paid.Amount
	}

	refund, err := u.provider.RefundPayment(ctx, paid.ProviderPaymentID, amount, "booking cancelled")
	if err != nil {
		u.logger.Error("cancellation refund failed",
			slog.String("booking_id", bookingID),
			slog.String("payment_id", paid.ProviderPaymentID),
			slog.String("error", err.Error()),
		)
		return false, ""
	}
	if err := u.paymentRepo.MarkRefunded(ctx, paid.ID, refund.ID, amount, u.clock.Now()); err != nil {
		u.logger.Error("failed to record cancellation refund", slog.String("refund_id", refund.ID), slog.String("error", err.Error()))
	}
	return true, refund.ID
}

func (u *cancelUseCaseImpl) GetCancellationStatus(ctx context.Context, amendmentID string) (*supplier.AmendmentResponse, error) {
	if amendmentID == "" {
		return nil, errs.Mark(errs.New("amendment id required"), ErrValidation)
	}
	resp, err := u.gateway.GetAmendmentDetails(ctx, amendmentID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to fetch amendment details")
	}
	return resp, nil
}

// ReleasePNR hands unticketed PNRs back to the supplier so held inventory is
// not billed. Only held (not yet ticketed) bookings qualify.
func (u *cancelUseCaseImpl) ReleasePNR(ctx context.Context, bookingID string, pnrs []string) error {
	if bookingID == "" || len(pnrs) == 0 {
		return errs.Mark(errs.New("booking id and pnrs required"), ErrValidation)
	}

	outcome, err := u.gateway.ReleasePNR(ctx, bookingID, pnrs)
	if err != nil {
		return errs.Wrap(err, "supplier release failed")
	}
	if outcome.Rejected() {
		return errs.Mark(errs.Newf("supplier declined release: %v", outcome.Errors), ErrSupplierRejected)
	}

	now := u.clock.Now()
	if err := u.bookingRepo.SetReleased(ctx, bookingID, pnrs, booking.StatusCancelled, now); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrBookingNotFound)
		}
		return errs.Wrap(err, "failed to record released pnrs")
	}

	_ = u.publisher.Publish(ctx, events.BookingEvent{
		Event:      events.EventBookingReleased,
		BookingID:  bookingID,
		OccurredAt: now,
		Payload:    map[string]any{"pnrs": pnrs},
	})
	return nil
}
