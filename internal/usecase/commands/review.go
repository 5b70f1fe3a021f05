package commands

import (
	"context"
	"math"

	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/infra/events"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReviewResult struct {
	BookingID    string
	SupplierFare float64
	FinalFare    int64
	FareAlert    bool
	Snapshots    []*snapshot.Snapshot
}

type ReviewCommands interface {
	ReviewFare(ctx context.Context, snapshotIDs []uuid.UUID) (*ReviewResult, error)
}

type reviewUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	gateway      SupplierGateway
	publisher    EventPublisher
	cfg          config.BookingConfig
	clock        clock.Clock
}

func NewReviewUseCase(
	snapshotRepo SnapshotRepository,
	gateway SupplierGateway,
	publisher EventPublisher,
	cfg config.BookingConfig,
	clock clock.Clock,
) ReviewCommands {
	return &reviewUseCaseImpl{
		snapshotRepo: snapshotRepo,
		gateway:      gateway,
		publisher:    publisher,
		cfg:          cfg,
		clock:        clock,
	}
}

// ReviewFare locks the supplier's live quote onto the snapshots and obtains
// the booking id every later step keys on. Reviewing the same snapshots
// again returns the stored result without another supplier round trip.
func (u *reviewUseCaseImpl) ReviewFare(ctx context.Context, snapshotIDs []uuid.UUID) (*ReviewResult, error) {
	if len(snapshotIDs) == 0 {
		return nil, errs.Mark(errs.New("at least one snapshot id required"), ErrValidation)
	}

	snapshots, err := u.snapshotRepo.FindByIDs(ctx, snapshotIDs)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrSnapshotNotFound)
		}
		return nil, errs.Wrap(err, "failed to load snapshots")
	}

	now := u.clock.Now()
	for _, s := range snapshots {
		if s.IsExpired(now) {
			return nil, errs.Mark(errs.Newf("snapshot %s expired", s.ID), ErrSnapshotExpired)
		}
	}

	if reviewed := existingReview(snapshots); reviewed != nil {
		return reviewed, nil
	}

	priceIDs := make([]string, len(snapshots))
	var lockedSupplierTotal float64
	for i, s := range snapshots {
		priceIDs[i] = s.PriceID
		lockedSupplierTotal += s.SupplierFare
	}

	resp, err := u.gateway.Review(ctx, priceIDs)
	if err != nil {
		return nil, errs.Wrap(err, "supplier review failed")
	}
	if !resp.Status.Success || resp.BookingID == "" {
		return nil, errs.Mark(errs.New("supplier declined review"), ErrSupplierRejected)
	}

	reviewedSupplierFare, ok := resp.TotalFare()
	if !ok {
		reviewedSupplierFare = lockedSupplierTotal
	}

	var reviewedFinalFare int64
	for i, s := range snapshots {
		base := s.SupplierFare
		if segFare, ok := resp.SegmentBaseFare(i); ok {
			base = segFare
		}
		reviewedFinalFare += pricing.Reapply(base, s.AppliedRules)
	}

	drift := math.Abs(reviewedSupplierFare - lockedSupplierTotal)
	fareAlert := resp.HasFareAlert() || drift > u.cfg.FareAlertThreshold

	err = u.snapshotRepo.MarkReviewed(ctx, snapshotIDs, resp.BookingID, reviewedSupplierFare, reviewedFinalFare, fareAlert, now)
	if err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, ErrReviewConflict)
		}
		return nil, errs.Wrap(err, "failed to store review result")
	}

	_ = u.publisher.Publish(ctx, events.BookingEvent{
		Event:      events.EventFareReviewed,
		BookingID:  resp.BookingID,
		OccurredAt: now,
		Payload: map[string]any{
			"supplierFare": reviewedSupplierFare,
			"finalFare":    reviewedFinalFare,
			"fareAlert":    fareAlert,
		},
	})

	for _, s := range snapshots {
		s.IsReviewed = true
		s.ReviewBookingID = resp.BookingID
		s.ReviewedSupplierFare = reviewedSupplierFare
		s.ReviewedFinalFare = reviewedFinalFare
		s.FareAlert = fareAlert
	}
	return &ReviewResult{
		BookingID:    resp.BookingID,
		SupplierFare: reviewedSupplierFare,
		FinalFare:    reviewedFinalFare,
		FareAlert:    fareAlert,
		Snapshots:    snapshots,
	}, nil
}

func existingReview(snapshots []*snapshot.Snapshot) *ReviewResult {
	first := snapshots[0]
	if !first.IsReviewed {
		return nil
	}
	for _, s := range snapshots[1:] {
		if !s.IsReviewed || s.ReviewBookingID != first.ReviewBookingID {
			return nil
		}
	}
	return &ReviewResult{
		BookingID:    first.ReviewBookingID,
		SupplierFare: first.ReviewedSupplierFare,
		FinalFare:    first.ReviewedFinalFare,
		FareAlert:    first.FareAlert,
		Snapshots:    snapshots,
	}
}
