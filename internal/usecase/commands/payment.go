package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/infra/events"
	"farelock/internal/pkg/clock"
	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

type CreateOrderResult struct {
	Payment *payment.Payment
	// Reused reports that an open order already existed for the booking and
	// was returned instead of creating a second charge.
	Reused bool
}

type VerifyPaymentRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

type PaymentCommands interface {
	CreateOrder(ctx context.Context, bookingID string) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*payment.Payment, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type paymentUseCaseImpl struct {
	snapshotRepo SnapshotRepository
	paymentRepo  PaymentRepository
	provider     PaymentProvider
	seats        SeatLedger
	publisher    EventPublisher
	cfg          config.BookingConfig
	clock        clock.Clock
	logger       *slog.Logger
}

func NewPaymentUseCase(
	snapshotRepo SnapshotRepository,
	paymentRepo PaymentRepository,
	provider PaymentProvider,
	seats SeatLedger,
	publisher EventPublisher,
	cfg config.BookingConfig,
	clock clock.Clock,
	logger *slog.Logger,
) PaymentCommands {
	return &paymentUseCaseImpl{
		snapshotRepo: snapshotRepo,
		paymentRepo:  paymentRepo,
		provider:     provider,
		seats:        seats,
		publisher:    publisher,
		cfg:          cfg,
		clock:        clock,
		logger:       logger,
	}
}

// CreateOrder opens a provider order for the reviewed fare plus any held
// seats. At most one open order exists per booking; retries get the
// existing one back instead of a second charge.
func (u *paymentUseCaseImpl) CreateOrder(ctx context.Context, bookingID string) (*CreateOrderResult, error) {
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

	existing, err := u.paymentRepo.FindOpenByBookingID(ctx, bookingID)
	if err == nil {
		return &CreateOrderResult{Payment: existing, Reused: true}, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Wrap(err, "failed to check open orders")
	}

	amount, err := u.chargeableAmount(ctx, bookingID, snapshots)
	if err != nil {
		return nil, err
	}

	order, err := u.provider.CreateOrder(ctx, bookingID, amount, u.cfg.Currency)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create provider order")
	}

	p := &payment.Payment{
		ID:              uuid.New(),
		BookingID:       bookingID,
		SnapshotID:      snapshots[0].ID,
		Amount:          amount,
		Currency:        u.cfg.Currency,
		Status:          payment.StatusCreated,
		ProviderOrderID: order.ID,
		CreatedAt:       now,
	}
	stored, created, err := u.paymentRepo.CreateIfAbsent(ctx, p)
	if err != nil {
		return nil, errs.Wrap(err, "failed to persist payment order")
	}
	return &CreateOrderResult{Payment: stored, Reused: !created}, nil
}

func (u *paymentUseCaseImpl) chargeableAmount(ctx context.Context, bookingID string, snapshots []*snapshot.Snapshot) (int64, error) {
	amount := snapshots[0].ReviewedFinalFare
	if amount <= 0 {
		return 0, errs.Mark(errs.New("booking has no reviewed fare"), ErrValidation)
	}

	holds, err := u.seats.Get(ctx, bookingID)
	if err != nil {
		return 0, errs.Wrap(err, "failed to load seat holds")
	}
	return amount + booking.SeatTotal(holds), nil
}

// VerifyPayment checks the checkout signature and captures the payment
// exactly once. A second delivery of the same verification is a no-op that
// returns the captured payment.
func (u *paymentUseCaseImpl) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*payment.Payment, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, errs.Mark(errs.New("order id, payment id and signature required"), ErrValidation)
	}
	if !u.provider.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, errs.Mark(errs.New("signature mismatch"), ErrSignatureInvalid)
	}

	p, err := u.paymentRepo.MarkPaid(ctx, req.OrderID, req.PaymentID, req.Signature, u.clock.Now())
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return nil, errs.Mark(err, ErrBookingNotFound)
		case infra.IsKind(err, infra.KindConflict):
			return nil, errs.Mark(err, ErrPaymentConflict)
		}
		return nil, errs.Wrap(err, "failed to capture payment")
	}

	_ = u.publisher.Notify(ctx, events.BookingEvent{
		Event:      events.EventPaymentCaptured,
		BookingID:  p.BookingID,
		OccurredAt: u.clock.Now(),
		Payload: map[string]any{
			"orderId": p.ProviderOrderID,
			"amount":  p.Amount,
		},
	})
	return p, nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes provider callbacks. Captures are applied with the
// same idempotent path as checkout verification, so whichever of the two
// arrives first wins and the other becomes a no-op.
func (u *paymentUseCaseImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !u.provider.VerifyWebhookSignature(body, signature) {
		return errs.Mark(errs.New("webhook signature mismatch"), ErrSignatureInvalid)
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errs.Mark(errs.Wrap(err, "malformed webhook body"), ErrValidation)
	}

	entity := ev.Payload.Payment.Entity
	switch ev.Event {
	case "payment.captured":
		if _, err := u.paymentRepo.MarkPaid(ctx, entity.OrderID, entity.ID, "", u.clock.Now()); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, ErrPaymentConflict)
			}
			return errs.Wrap(err, "failed to apply webhook capture")
		}
	case "payment.failed":
		if err := u.paymentRepo.MarkFailed(ctx, entity.OrderID, u.clock.Now()); err != nil {
			return errs.Wrap(err, "failed to apply webhook failure")
		}
	default:
		u.logger.Debug("ignoring webhook event", slog.String("event", ev.Event))
	}
	return nil
}
