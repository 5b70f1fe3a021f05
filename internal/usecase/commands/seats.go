package commands

import (
	"context"
	"math"

	"farelock/internal/domain/booking"
	"farelock/internal/infra"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"
)

type SeatSelection struct {
	TravellerIndex int
	SegmentID      string
	SeatCode       string
}

type SeatCommands interface {
	SelectSeats(ctx context.Context, bookingID string, selections []SeatSelection) ([]booking.SeatHold, error)
	GetSeatMap(ctx context.Context, bookingID string) ([]supplier.NormalizedSegment, error)
}

type seatUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	gateway      SupplierGateway
	ledger       SeatLedger
	clock        clock.Clock
}

func NewSeatUseCase(
	snapshotRepo SnapshotRepository,
	gateway SupplierGateway,
	ledger SeatLedger,
	clock clock.Clock,
) SeatCommands {
	return &seatUseCaseImpl{
		snapshotRepo: snapshotRepo,
		gateway:      gateway,
		ledger:       ledger,
		clock:        clock,
	}
}

func (u *seatUseCaseImpl) GetSeatMap(ctx context.Context, bookingID string) ([]supplier.NormalizedSegment, error) {
	if bookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}
	segments, err := u.gateway.GetSeatMap(ctx, bookingID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to fetch seat map")
	}
	return segments, nil
}

// SelectSeats validates the requested seats against the supplier's live seat
// map and replaces the booking's held set wholesale. Prices come from the
// seat map, never from the caller. An empty selection clears the holds.
func (u *seatUseCaseImpl) SelectSeats(ctx context.Context, bookingID string, selections []SeatSelection) ([]booking.SeatHold, error) {
	if bookingID == "" {
		return nil, errs.Mark(errs.New("booking id required"), ErrValidation)
	}

	snapshots, err := u.snapshotRepo.FindByReviewBookingID(ctx, bookingID)
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

	if len(selections) == 0 {
		if err := u.ledger.Replace(ctx, bookingID, nil); err != nil {
			return nil, errs.Wrap(err, "failed to clear seat holds")
		}
		return nil, nil
	}

	segments, err := u.gateway.GetSeatMap(ctx, bookingID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to fetch seat map")
	}
	seatsBySegment := make(map[string]map[string]supplier.Seat, len(segments))
	for _, seg := range segments {
		seats := make(map[string]supplier.Seat, len(seg.Seats))
		for _, seat := range seg.Seats {
			seats[seat.Code] = seat
		}
		seatsBySegment[seg.SegmentID] = seats
	}

	holds := make([]booking.SeatHold, 0, len(selections))
	taken := map[string]bool{}
	for _, sel := range selections {
		seats, ok := seatsBySegment[sel.SegmentID]
		if !ok {
			return nil, errs.Mark(errs.Newf("unknown segment %s", sel.SegmentID), ErrValidation)
		}
		seat, ok := seats[sel.SeatCode]
		if !ok || seat.IsBooked {
			return nil, errs.Mark(errs.Newf("seat %s not available on %s", sel.SeatCode, sel.SegmentID), ErrSeatUnavailable)
		}
		key := sel.SegmentID + ":" + sel.SeatCode
		if taken[key] {
			return nil, errs.Mark(errs.Newf("seat %s selected twice", sel.SeatCode), ErrValidation)
		}
		taken[key] = true

		holds = append(holds, booking.SeatHold{
			BookingID:      bookingID,
			TravellerIndex: sel.TravellerIndex,
			SegmentID:      sel.SegmentID,
			SeatCode:       sel.SeatCode,
			Price:          int64(math.Floor(seat.Amount + 0.5)),
		})
	}

	if err := u.ledger.Replace(ctx, bookingID, holds); err != nil {
		return nil, errs.Wrap(err, "failed to store seat holds")
	}
	return holds, nil
}
