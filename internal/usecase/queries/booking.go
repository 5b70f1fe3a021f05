package queries

import (
	"context"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/errs"
	"farelock/internal/usecase/commands"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound  = errs.New("booking not found")
	ErrSnapshotNotFound = errs.New("price snapshot not found")
	ErrInvalidFlow      = errs.New("invalid fare rule flow")
)

// BookingView merges the stored record with the supplier's live order state.
type BookingView struct {
	BookingID     string              `json:"bookingId"`
	PNR           string              `json:"pnr,omitempty"`
	Status        booking.Status      `json:"status"`
	SupplierState string              `json:"supplierState,omitempty"`
	FinalFare     int64               `json:"finalFare"`
	Travellers    []booking.Traveller `json:"travellers,omitempty"`
	PNRDetails    map[string]string   `json:"pnrDetails,omitempty"`
	TicketNumbers map[string]string   `json:"ticketNumbers,omitempty"`
	BookedAt      time.Time           `json:"bookedAt"`
	ReleasedAt    *time.Time          `json:"releasedAt,omitempty"`
	PNRsReleased  []string            `json:"pnrsReleased,omitempty"`
}

type BookingQueries interface {
	GetBooking(ctx context.Context, bookingID string) (*BookingView, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*snapshot.Snapshot, error)
	GetFareRules(ctx context.Context, flow supplier.FareRuleFlow, id string) (*supplier.FareRulesResponse, error)
}

// FareRuleGateway is the read-side slice of the supplier API.
type FareRuleGateway interface {
	GetBookingDetails(ctx context.Context, bookingID string) (*supplier.BookingDetailsResponse, error)
	GetFareRules(ctx context.Context, flow supplier.FareRuleFlow, id string) (*supplier.FareRulesResponse, error)
}

type bookingQueriesImpl struct {
	bookingRepo  commands.BookingRepository
	snapshotRepo commands.SnapshotRepository
	gateway      FareRuleGateway
	clock        clock.Clock
}

func NewBookingQueries(
	bookingRepo commands.BookingRepository,
	snapshotRepo commands.SnapshotRepository,
	gateway FareRuleGateway,
	clock clock.Clock,
) BookingQueries {
	return &bookingQueriesImpl{
		bookingRepo:  bookingRepo,
		snapshotRepo: snapshotRepo,
		gateway:      gateway,
		clock:        clock,
	}
}

// GetBooking returns the stored record enriched with the supplier's live
// order status. Supplier unavailability degrades to the stored view rather
// than failing the read.
func (q *bookingQueriesImpl) GetBooking(ctx context.Context, bookingID string) (*BookingView, error) {
	rec, err := q.bookingRepo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrBookingNotFound)
		}
		return nil, errs.Wrap(err, "failed to load booking record")
	}

	view := &BookingView{
		BookingID:     rec.BookingID,
		PNR:           rec.PNR,
		Status:        rec.Status,
		FinalFare:     rec.FinalFare,
		Travellers:    rec.Travellers,
		PNRDetails:    rec.PNRDetails,
		TicketNumbers: rec.TicketNumbers,
		BookedAt:      rec.BookedAt,
		ReleasedAt:    rec.ReleasedAt,
		PNRsReleased:  rec.PNRsReleased,
	}

	if details, err := q.gateway.GetBookingDetails(ctx, bookingID); err == nil && details.Status.Success {
		view.SupplierState = details.Order.Status
		if merged := details.PNRBySegment(); len(merged) > 0 {
			view.PNRDetails = merged
		}
		if merged := details.TicketsBySegment(); len(merged) > 0 {
			view.TicketNumbers = merged
		}
	}
	return view, nil
}

// GetSnapshot reads one snapshot, treating an expired one the same as a
// missing one.
func (q *bookingQueriesImpl) GetSnapshot(ctx context.Context, id uuid.UUID) (*snapshot.Snapshot, error) {
	s, err := q.snapshotRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrSnapshotNotFound)
		}
		return nil, errs.Wrap(err, "failed to load snapshot")
	}
	if s.IsExpired(q.clock.Now()) {
		return nil, errs.Mark(errs.New("snapshot window passed"), ErrSnapshotNotFound)
	}
	return s, nil
}

func (q *bookingQueriesImpl) GetFareRules(ctx context.Context, flow supplier.FareRuleFlow, id string) (*supplier.FareRulesResponse, error) {
	if id == "" {
		return nil, errs.Mark(errs.New("fare rule id required"), ErrInvalidFlow)
	}
	switch flow {
	case supplier.FlowSearch, supplier.FlowReview, supplier.FlowBookingDetail:
	default:
		return nil, errs.Mark(errs.Newf("unknown fare rule flow %q", flow), ErrInvalidFlow)
	}

	resp, err := q.gateway.GetFareRules(ctx, flow, id)
	if err != nil {
		return nil, errs.Wrap(err, "failed to fetch fare rules")
	}
	return resp, nil
}
