package repository

import (
	"context"
	"time"

	"farelock/internal/domain/payment"
	"farelock/internal/infra"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository persists provider orders. A partial unique index keeps at
// most one CREATED order per supplier booking id, so order creation is an
// insert that degrades to returning the existing open order.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `
	id, booking_id, snapshot_id, amount, currency, status,
	provider_order_id, provider_payment_id, provider_signature,
	refund_status, refund_id, refunded_amount,
	created_at, paid_at, refunded_at`

// CreateIfAbsent inserts the order unless an open one already exists for the
// booking id. Returns the stored payment and whether this call created it.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, p *payment.Payment) (*payment.Payment, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (
			id, booking_id, snapshot_id, amount, currency, status,
			provider_order_id, created_at
		) VALUES ($1, $2, $3, $4, $5, 'CREATED', $6, $7)
		ON CONFLICT (booking_id) WHERE status = 'CREATED' DO NOTHING
		RETURNING `+paymentColumns,
		p.ID, p.BookingID, p.SnapshotID, p.Amount, p.Currency, p.ProviderOrderID, p.CreatedAt,
	)
	created, err := scanPayment(row)
	if err == nil {
		return created, true, nil
	}
	if !isNoRows(err) {
		return nil, false, wrapQueryErr("failed to create payment order", err)
	}

	existing, err := r.FindOpenByBookingID(ctx, p.BookingID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PaymentRepository) FindOpenByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = $1 AND status = 'CREATED'`,
		bookingID,
	)
	p, err := scanPayment(row)
	if err != nil {
		return nil, wrapQueryErr("failed to find open payment order", err)
	}
	return p, nil
}

func (r *PaymentRepository) FindByProviderOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE provider_order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		orderID,
	)
	p, err := scanPayment(row)
	if err != nil {
		return nil, wrapQueryErr("failed to find payment by order id", err)
	}
	return p, nil
}

func (r *PaymentRepository) FindPaidByBookingID(ctx context.Context, bookingID string) (*payment.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE booking_id = $1 AND status = 'PAID' AND refund_status <> 'COMPLETED'
		ORDER BY paid_at DESC
		LIMIT 1`,
		bookingID,
	)
	p, err := scanPayment(row)
	if err != nil {
		return nil, wrapQueryErr("failed to find paid payment", err)
	}
	return p, nil
}

// MarkPaid captures a verified payment exactly once. A second delivery with
// the same payment id reads back the already captured row; a different
// payment id against a captured order is a conflict.
func (r *PaymentRepository) MarkPaid(ctx context.Context, orderID, paymentID, signature string, now time.Time) (*payment.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE payments
		SET status = 'PAID',
		    provider_payment_id = $2,
		    provider_signature = $3,
		    paid_at = $4
		WHERE provider_order_id = $1 AND status = 'CREATED'
		RETURNING `+paymentColumns,
		orderID, paymentID, signature, now,
	)
	p, err := scanPayment(row)
	if err == nil {
		return p, nil
	}
	if !isNoRows(err) {
		return nil, wrapQueryErr("failed to mark payment paid", err)
	}

	existing, err := r.FindByProviderOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.Status == payment.StatusPaid && existing.ProviderPaymentID == paymentID {
		return existing, nil
	}
	return nil, infra.WrapRepoErr("payment already settled differently", errs.New("payment state conflict"), infra.KindConflict)
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, orderID string, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = 'FAILED'
		WHERE provider_order_id = $1 AND status = 'CREATED'`,
		orderID,
	)
	if err != nil {
		return wrapQueryErr("failed to mark payment failed", err)
	}
	return nil
}

func (r *PaymentRepository) MarkRefunded(ctx context.Context, id uuid.UUID, refundID string, amount int64, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = 'REFUNDED',
		    refund_status = 'COMPLETED',
		    refund_id = $2,
		    refunded_amount = $3,
		    refunded_at = $4
		WHERE id = $1 AND refund_status <> 'COMPLETED'`,
		id, refundID, amount, now,
	)
	if err != nil {
		return wrapQueryErr("failed to mark payment refunded", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment already refunded", errs.New("refund conflict"), infra.KindConflict)
	}
	return nil
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.SnapshotID, &p.Amount, &p.Currency, &p.Status,
		&p.ProviderOrderID, &p.ProviderPaymentID, &p.ProviderSignature,
		&p.RefundStatus, &p.RefundID, &p.RefundedAmount,
		&p.CreatedAt, &p.PaidAt, &p.RefundedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
