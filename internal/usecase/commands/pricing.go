package commands

import (
	"context"

	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra/events"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

type PriceItem struct {
	PriceID      string
	TripType     string
	RouteIndex   int
	SupplierFare float64
	Attributes   pricing.Context
}

type LockPriceRequest struct {
	SearchSessionID string
	ServiceType     pricing.ServiceType
	Region          string
	Items           []PriceItem
}

type PricingCommands interface {
	LockPrice(ctx context.Context, req LockPriceRequest) ([]*snapshot.Snapshot, error)
}

type pricingUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	ruleRepo     RuleRepository
	publisher    EventPublisher
	cfg          config.BookingConfig
	clock        clock.Clock
}

func NewPricingUseCase(
	snapshotRepo SnapshotRepository,
	ruleRepo RuleRepository,
	publisher EventPublisher,
	cfg config.BookingConfig,
	clock clock.Clock,
) PricingCommands {
	return &pricingUseCaseImpl{
		snapshotRepo: snapshotRepo,
		ruleRepo:     ruleRepo,
		publisher:    publisher,
		cfg:          cfg,
		clock:        clock,
	}
}

// LockPrice applies the active pricing rules to each selected offer and
// persists one snapshot per offer. The snapshots carry the retail fare the
// customer will pay for the rest of the flow; nothing downstream re-prices.
func (u *pricingUseCaseImpl) LockPrice(ctx context.Context, req LockPriceRequest) ([]*snapshot.Snapshot, error) {
	if err := validateLockPrice(req); err != nil {
		return nil, err
	}

	rules, err := u.ruleRepo.FindActive(ctx, req.ServiceType, req.Region)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load pricing rules")
	}

	now := u.clock.Now()
	expiresAt := now.Add(u.cfg.SnapshotTTL)

	snapshots := make([]*snapshot.Snapshot, 0, len(req.Items))
	for _, item := range req.Items {
		attrs := item.Attributes
		attrs.ServiceType = req.ServiceType
		result := pricing.Evaluate(item.SupplierFare, attrs, rules)

		s := &snapshot.Snapshot{
			ID:              uuid.New(),
			SearchSessionID: req.SearchSessionID,
			PriceID:         item.PriceID,
			TripType:        item.TripType,
			RouteIndex:      item.RouteIndex,
			ServiceType:     req.ServiceType,
			SupplierFare:    item.SupplierFare,
			FinalFare:       result.FinalFare,
			MarkupApplied:   result.FinalFare - int64(item.SupplierFare),
			AppliedRules:    result.AppliedRules,
			Currency:        u.cfg.Currency,
			ExpiresAt:       expiresAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := u.snapshotRepo.Create(ctx, s); err != nil {
			return nil, errs.Wrap(err, "failed to persist price snapshot")
		}
		snapshots = append(snapshots, s)

		_ = u.publisher.Publish(ctx, events.BookingEvent{
			Event:      events.EventSnapshotCreated,
			SnapshotID: s.ID.String(),
			OccurredAt: now,
			Payload: map[string]any{
				"searchSessionId": s.SearchSessionID,
				"priceId":         s.PriceID,
				"finalFare":       s.FinalFare,
			},
		})
	}
	return snapshots, nil
}

func validateLockPrice(req LockPriceRequest) error {
	if req.SearchSessionID == "" {
		return errs.Mark(errs.New("search session id required"), ErrValidation)
	}
	if req.ServiceType != pricing.ServiceFlight && req.ServiceType != pricing.ServiceHotel {
		return errs.Mark(errs.New("unknown service type"), ErrValidation)
	}
	if len(req.Items) == 0 {
		return errs.Mark(errs.New("at least one price item required"), ErrValidation)
	}
	for _, item := range req.Items {
		if item.PriceID == "" {
			return errs.Mark(errs.New("price id required"), ErrValidation)
		}
		if item.SupplierFare <= 0 {
			return errs.Mark(errs.New("supplier fare must be positive"), ErrValidation)
		}
	}
	return nil
}
