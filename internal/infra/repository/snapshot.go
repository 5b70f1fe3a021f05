package repository

import (
	"context"
	"encoding/json"
	"time"

	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository persists price snapshots. The state transitions are all
// conditional updates so that concurrent callers converge on one winner
// without an advisory lock.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

const snapshotColumns = `
	id, search_session_id, price_id, trip_type, route_index, service_type,
	supplier_fare, final_fare, markup_applied, applied_rules, currency,
	expires_at, is_reviewed, review_booking_id, reviewed_supplier_fare,
	reviewed_final_fare, fare_alert, reviewed_at, is_held, held_at,
	confirming_at, final_booking_id, booked_at, pnr, created_at, updated_at`

func (r *SnapshotRepository) Create(ctx context.Context, s *snapshot.Snapshot) error {
	rules, err := json.Marshal(s.AppliedRules)
	if err != nil {
		return errs.Wrap(err, "failed to encode applied rules")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO price_snapshots (
			id, search_session_id, price_id, trip_type, route_index, service_type,
			supplier_fare, final_fare, markup_applied, applied_rules, currency,
			expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		s.ID, s.SearchSessionID, s.PriceID, s.TripType, s.RouteIndex, s.ServiceType,
		s.SupplierFare, s.FinalFare, s.MarkupApplied, rules, s.Currency,
		s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return wrapQueryErr("failed to create price snapshot", err)
	}
	return nil
}

func (r *SnapshotRepository) FindByID(ctx context.Context, id uuid.UUID) (*snapshot.Snapshot, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+snapshotColumns+` FROM price_snapshots WHERE id = $1`, id)
	s, err := scanSnapshot(row)
	if err != nil {
		return nil, wrapQueryErr("failed to find price snapshot", err)
	}
	return s, nil
}

func (r *SnapshotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*snapshot.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM price_snapshots
		WHERE id = ANY($1)
		ORDER BY route_index`, ids)
	if err != nil {
		return nil, wrapQueryErr("failed to query price snapshots", err)
	}
	defer rows.Close()

	snapshots, err := collectSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snapshots) != len(ids) {
		return nil, infra.WrapRepoErr("some price snapshots not found", errs.New("missing snapshots"), infra.KindNotFound)
	}
	return snapshots, nil
}

func (r *SnapshotRepository) FindByReviewBookingID(ctx context.Context, bookingID string) ([]*snapshot.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM price_snapshots
		WHERE review_booking_id = $1
		ORDER BY route_index`, bookingID)
	if err != nil {
		return nil, wrapQueryErr("failed to query snapshots by booking id", err)
	}
	defer rows.Close()

	snapshots, err := collectSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, infra.WrapRepoErr("no snapshot for booking id", errs.New("not found"), infra.KindNotFound)
	}
	return snapshots, nil
}

// MarkReviewed stamps the review result onto the given snapshots. The
// predicate lets a retry with the same booking id pass through as a no-op
// while rejecting any attempt to rebind a snapshot to a different booking.
func (r *SnapshotRepository) MarkReviewed(
	ctx context.Context,
	ids []uuid.UUID,
	bookingID string,
	reviewedSupplierFare float64,
	reviewedFinalFare int64,
	fareAlert bool,
	now time.Time,
) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE price_snapshots
		SET is_reviewed = TRUE,
		    review_booking_id = $2,
		    reviewed_supplier_fare = $3,
		    reviewed_final_fare = $4,
		    fare_alert = $5,
		    reviewed_at = COALESCE(reviewed_at, $6),
		    updated_at = $6
		WHERE id = ANY($1)
		  AND review_booking_id IN ('', $2)`,
		ids, bookingID, reviewedSupplierFare, reviewedFinalFare, fareAlert, now,
	)
	if err != nil {
		return wrapQueryErr("failed to mark snapshots reviewed", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return infra.WrapRepoErr("snapshot already reviewed under another booking", errs.New("review conflict"), infra.KindConflict)
	}
	return nil
}

func (r *SnapshotRepository) MarkHeld(ctx context.Context, bookingID string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE price_snapshots
		SET is_held = TRUE,
		    held_at = COALESCE(held_at, $2),
		    updated_at = $2
		WHERE review_booking_id = $1`,
		bookingID, now,
	)
	if err != nil {
		return wrapQueryErr("failed to mark snapshots held", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("no snapshot for booking id", errs.New("not found"), infra.KindNotFound)
	}
	return nil
}

// AdoptReviewBookingID rebinds snapshots from a locally issued booking id to
// the one the supplier reports as already existing, so that a duplicate hold
// reconciles onto the supplier's record.
func (r *SnapshotRepository) AdoptReviewBookingID(ctx context.Context, fromBookingID, toBookingID string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE price_snapshots
		SET review_booking_id = $2,
		    is_held = TRUE,
		    held_at = COALESCE(held_at, $3),
		    updated_at = $3
		WHERE review_booking_id IN ($1, $2)`,
		fromBookingID, toBookingID, now,
	)
	if err != nil {
		return wrapQueryErr("failed to adopt supplier booking id", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("no snapshot for booking id", errs.New("not found"), infra.KindNotFound)
	}
	return nil
}

// ClaimConfirming is the confirm de-duplication gate. It atomically stamps
// confirming_at on every snapshot of the booking, but only if no other
// attempt holds the claim or the previous claim is older than window. Zero
// rows means either the booking is unknown or another confirm is in flight;
// the two are distinguished with a follow-up read.
func (r *SnapshotRepository) ClaimConfirming(ctx context.Context, bookingID string, now time.Time, window time.Duration) ([]*snapshot.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE price_snapshots
		SET confirming_at = $2, updated_at = $2
		WHERE review_booking_id = $1
		  AND (confirming_at IS NULL OR confirming_at < $3)
		RETURNING `+snapshotColumns,
		bookingID, now, now.Add(-window),
	)
	if err != nil {
		return nil, wrapQueryErr("failed to claim confirm guard", err)
	}
	defer rows.Close()

	snapshots, err := collectSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snapshots) > 0 {
		return snapshots, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM price_snapshots WHERE review_booking_id = $1)`,
		bookingID,
	).Scan(&exists); err != nil {
		return nil, wrapQueryErr("failed to check booking id", err)
	}
	if !exists {
		return nil, infra.WrapRepoErr("no snapshot for booking id", errs.New("not found"), infra.KindNotFound)
	}
	return nil, infra.WrapRepoErr("confirm already in progress", errs.New("confirm guard held"), infra.KindConflict)
}

// ClearConfirming releases the guard after a failed attempt so a retry does
// not have to wait out the window.
func (r *SnapshotRepository) ClearConfirming(ctx context.Context, bookingID string, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE price_snapshots
		SET confirming_at = NULL, updated_at = $2
		WHERE review_booking_id = $1 AND final_booking_id = ''`,
		bookingID, now,
	)
	if err != nil {
		return wrapQueryErr("failed to clear confirm guard", err)
	}
	return nil
}

// MarkBooked records the terminal state. Re-stamping the same final booking
// id is a no-op; a different one is a conflict.
func (r *SnapshotRepository) MarkBooked(ctx context.Context, bookingID, finalBookingID, pnr string, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE price_snapshots
		SET final_booking_id = $2,
		    pnr = $3,
		    booked_at = COALESCE(booked_at, $4),
		    confirming_at = NULL,
		    updated_at = $4
		WHERE review_booking_id = $1
		  AND final_booking_id IN ('', $2)`,
		bookingID, finalBookingID, pnr, now,
	)
	if err != nil {
		return wrapQueryErr("failed to mark snapshots booked", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM price_snapshots WHERE review_booking_id = $1)`,
			bookingID,
		).Scan(&exists); err != nil {
			return wrapQueryErr("failed to check booking id", err)
		}
		if exists {
			return infra.WrapRepoErr("snapshot already booked under another id", errs.New("booked conflict"), infra.KindConflict)
		}
		return infra.WrapRepoErr("no snapshot for booking id", errs.New("not found"), infra.KindNotFound)
	}
	return nil
}

// DeleteExpired removes snapshots whose window passed without reaching a
// final booking. Run periodically by the sweep worker.
func (r *SnapshotRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM price_snapshots
		WHERE expires_at <= $1 AND final_booking_id = ''`,
		now,
	)
	if err != nil {
		return 0, wrapQueryErr("failed to delete expired snapshots", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	var rules []byte
	err := row.Scan(
		&s.ID, &s.SearchSessionID, &s.PriceID, &s.TripType, &s.RouteIndex, &s.ServiceType,
		&s.SupplierFare, &s.FinalFare, &s.MarkupApplied, &rules, &s.Currency,
		&s.ExpiresAt, &s.IsReviewed, &s.ReviewBookingID, &s.ReviewedSupplierFare,
		&s.ReviewedFinalFare, &s.FareAlert, &s.ReviewedAt, &s.IsHeld, &s.HeldAt,
		&s.ConfirmingAt, &s.FinalBookingID, &s.BookedAt, &s.PNR, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &s.AppliedRules); err != nil {
			return nil, errs.Wrap(err, "failed to decode applied rules")
		}
	}
	if s.AppliedRules == nil {
		s.AppliedRules = []pricing.AppliedRule{}
	}
	return &s, nil
}

func collectSnapshots(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*snapshot.Snapshot, error) {
	var out []*snapshot.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan price snapshot", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read price snapshots", err)
	}
	return out, nil
}
