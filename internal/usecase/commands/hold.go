package commands

import (
	"context"
	"log/slog"

	"farelock/internal/domain/booking"
	"farelock/internal/infra"
	"farelock/internal/infra/cache"
	"farelock/internal/infra/events"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"
)

type HoldRequest struct {
	BookingID    string
	Travellers   []booking.Traveller
	ContactInfo  booking.ContactInfo
	DeliveryInfo booking.DeliveryInfo
	GSTInfo      *booking.GSTInfo
}

type HoldResult struct {
	// BookingID is the id the hold ended up under. On a duplicate it is the
	// supplier's original id, not the one the caller sent.
	BookingID string
	Reused    bool
}

type HoldCommands interface {
	HoldBooking(ctx context.Context, req HoldRequest) (*HoldResult, error)
}

type holdUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	gateway      SupplierGateway
	drafts       DraftStore
	publisher    EventPublisher
	clock        clock.Clock
	logger       *slog.Logger
}

func NewHoldUseCase(
	snapshotRepo SnapshotRepository,
	gateway SupplierGateway,
	drafts DraftStore,
	publisher EventPublisher,
	clock clock.Clock,
	logger *slog.Logger,
) HoldCommands {
	return &holdUseCaseImpl{
		snapshotRepo: snapshotRepo,
		gateway:      gateway,
		drafts:       drafts,
		publisher:    publisher,
		clock:        clock,
		logger:       logger,
	}
}

// HoldBooking places the reviewed itinerary on hold with the supplier. No
// money moves here. A duplicate-booking response from the supplier means a
// previous attempt already landed; the hold reconciles onto the supplier's
// booking id and reports success.
func (u *holdUseCaseImpl) HoldBooking(ctx context.Context, req HoldRequest) (*HoldResult, error) {
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
	held := true
	for _, s := range snapshots {
		if s.IsExpired(now) {
			return nil, errs.Mark(errs.New("price snapshot window passed"), ErrSnapshotExpired)
		}
		if !s.Holdable() {
			return nil, errs.Mark(errs.New("snapshot not reviewed"), ErrValidation)
		}
		if !s.IsHeld {
			held = false
		}
	}
	// A repeat of an already-placed hold answers locally. The supplier side
	// is settled; only the first attempt should reach it.
	if held {
		return &HoldResult{BookingID: req.BookingID, Reused: true}, nil
	}

	travellers, err := booking.NormalizeTravellers(req.Travellers)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	contact := booking.NormalizeContact(req.ContactInfo)
	delivery := booking.NormalizeDelivery(req.DeliveryInfo, contact)
	gst := booking.SanitizeGST(req.GSTInfo)

	outcome, err := u.gateway.HoldBooking(ctx, supplier.BookRequest{
		BookingID:     req.BookingID,
		TravellerInfo: travellers,
		DeliveryInfo:  delivery,
		ContactInfo:   &contact,
		GSTInfo:       gst,
	})
	if err != nil {
		return nil, errs.Wrap(err, "supplier hold failed")
	}

	draft := cache.Draft{
		Travellers:   travellers,
		ContactInfo:  contact,
		DeliveryInfo: delivery,
		GSTInfo:      gst,
	}

	var result HoldResult
	switch {
	case outcome.OK():
		if err := u.snapshotRepo.MarkHeld(ctx, req.BookingID, now); err != nil {
			return nil, errs.Wrap(err, "failed to mark snapshots held")
		}
		result = HoldResult{BookingID: req.BookingID}

	case outcome.Duplicate():
		if err := u.snapshotRepo.AdoptReviewBookingID(ctx, req.BookingID, outcome.BookingID, now); err != nil {
			return nil, errs.Wrap(err, "failed to adopt supplier booking id")
		}
		u.logger.Info("hold reconciled onto existing supplier booking",
			slog.String("requested_booking_id", req.BookingID),
			slog.String("supplier_booking_id", outcome.BookingID),
		)
		result = HoldResult{BookingID: outcome.BookingID, Reused: true}

	default:
		return nil, errs.Mark(errs.Newf("supplier declined hold: %v", outcome.Errors), ErrSupplierRejected)
	}

	if err := u.drafts.Save(ctx, result.BookingID, draft); err != nil {
		u.logger.Warn("failed to store booking draft", slog.String("error", err.Error()))
	}

	_ = u.publisher.Publish(ctx, events.BookingEvent{
		Event:      events.EventBookingHeld,
		BookingID:  result.BookingID,
		OccurredAt: now,
		Payload:    map[string]any{"reused": result.Reused},
	})
	return &result, nil
}
