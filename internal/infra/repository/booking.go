package repository

import (
	"context"
	"encoding/json"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/infra"
	"farelock/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository persists booking records. The supplier booking id is the
// idempotency key: two confirms racing on the same id converge on a single
// row and the loser gets the winner's record back.
type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `
	id, snapshot_id, search_session_id, booking_id, pnr, travellers,
	contact_info, delivery_info, gst_info, final_fare, status,
	pnr_details, ticket_numbers, notification_sent,
	booked_at, released_at, pnrs_released, created_at, updated_at`

// CreateIfAbsent inserts the record unless one already exists for the
// booking id. Returns the stored record and whether an existing one was
// reused.
func (r *BookingRepository) CreateIfAbsent(ctx context.Context, rec *booking.Record) (*booking.Record, bool, error) {
	travellers, err := json.Marshal(rec.Travellers)
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode travellers")
	}
	contact, err := json.Marshal(rec.ContactInfo)
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode contact info")
	}
	delivery, err := json.Marshal(rec.DeliveryInfo)
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode delivery info")
	}
	var gst []byte
	if rec.GSTInfo != nil {
		if gst, err = json.Marshal(rec.GSTInfo); err != nil {
			return nil, false, errs.Wrap(err, "failed to encode gst info")
		}
	}
	pnrDetails, err := json.Marshal(orEmptyMap(rec.PNRDetails))
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode pnr details")
	}
	tickets, err := json.Marshal(orEmptyMap(rec.TicketNumbers))
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode ticket numbers")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (
			id, snapshot_id, search_session_id, booking_id, pnr, travellers,
			contact_info, delivery_info, gst_info, final_fare, status,
			pnr_details, ticket_numbers, booked_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		ON CONFLICT (booking_id) DO NOTHING
		RETURNING `+bookingColumns,
		rec.ID, rec.SnapshotID, rec.SearchSessionID, rec.BookingID, rec.PNR, travellers,
		contact, delivery, gst, rec.FinalFare, rec.Status,
		pnrDetails, tickets, rec.BookedAt, rec.CreatedAt,
	)
	created, err := scanBooking(row)
	if err == nil {
		return created, false, nil
	}
	if !isNoRows(err) {
		return nil, false, wrapQueryErr("failed to create booking record", err)
	}

	existing, err := r.FindByBookingID(ctx, rec.BookingID)
	if err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func (r *BookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*booking.Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, bookingID)
	rec, err := scanBooking(row)
	if err != nil {
		return nil, wrapQueryErr("failed to find booking record", err)
	}
	return rec, nil
}

func (r *BookingRepository) UpdateDetails(ctx context.Context, bookingID string, pnrDetails, ticketNumbers map[string]string, status booking.Status, now time.Time) error {
	pnrs, err := json.Marshal(orEmptyMap(pnrDetails))
	if err != nil {
		return errs.Wrap(err, "failed to encode pnr details")
	}
	tickets, err := json.Marshal(orEmptyMap(ticketNumbers))
	if err != nil {
		return errs.Wrap(err, "failed to encode ticket numbers")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET pnr_details = $2, ticket_numbers = $3, status = $4, updated_at = $5
		WHERE booking_id = $1`,
		bookingID, pnrs, tickets, status, now,
	)
	if err != nil {
		return wrapQueryErr("failed to update booking details", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking record not found", errs.New("not found"), infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) MarkNotificationSent(ctx context.Context, bookingID string, now time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET notification_sent = TRUE, updated_at = $2
		WHERE booking_id = $1`,
		bookingID, now,
	)
	if err != nil {
		return wrapQueryErr("failed to mark notification sent", err)
	}
	return nil
}

// SetReleased records which PNRs were released back to the supplier. The
// released set accumulates across partial releases.
func (r *BookingRepository) SetReleased(ctx context.Context, bookingID string, pnrs []string, status booking.Status, now time.Time) error {
	released, err := json.Marshal(pnrs)
	if err != nil {
		return errs.Wrap(err, "failed to encode released pnrs")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET pnrs_released = (
		        SELECT COALESCE(jsonb_agg(DISTINCT v), '[]'::jsonb)
		        FROM jsonb_array_elements(pnrs_released || $2::jsonb) AS v
		    ),
		    released_at = COALESCE(released_at, $3),
		    status = $4,
		    updated_at = $3
		WHERE booking_id = $1`,
		bookingID, released, now, status,
	)
	if err != nil {
		return wrapQueryErr("failed to record released pnrs", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking record not found", errs.New("not found"), infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindUnnotified(ctx context.Context, limit int) ([]*booking.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE notification_sent = FALSE AND status IN ('BOOKED', 'TICKETED')
		ORDER BY booked_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, wrapQueryErr("failed to query unnotified bookings", err)
	}
	defer rows.Close()

	var out []*booking.Record
	for rows.Next() {
		rec, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking record", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking records", err)
	}
	return out, nil
}

func scanBooking(row rowScanner) (*booking.Record, error) {
	var rec booking.Record
	var travellers, contact, delivery, gst, pnrDetails, tickets, released []byte
	err := row.Scan(
		&rec.ID, &rec.SnapshotID, &rec.SearchSessionID, &rec.BookingID, &rec.PNR, &travellers,
		&contact, &delivery, &gst, &rec.FinalFare, &rec.Status,
		&pnrDetails, &tickets, &rec.NotificationSent,
		&rec.BookedAt, &rec.ReleasedAt, &released, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(travellers, &rec.Travellers); err != nil {
		return nil, errs.Wrap(err, "failed to decode travellers")
	}
	if err := json.Unmarshal(contact, &rec.ContactInfo); err != nil {
		return nil, errs.Wrap(err, "failed to decode contact info")
	}
	if err := json.Unmarshal(delivery, &rec.DeliveryInfo); err != nil {
		return nil, errs.Wrap(err, "failed to decode delivery info")
	}
	if len(gst) > 0 {
		rec.GSTInfo = &booking.GSTInfo{}
		if err := json.Unmarshal(gst, rec.GSTInfo); err != nil {
			return nil, errs.Wrap(err, "failed to decode gst info")
		}
	}
	if err := json.Unmarshal(pnrDetails, &rec.PNRDetails); err != nil {
		return nil, errs.Wrap(err, "failed to decode pnr details")
	}
	if err := json.Unmarshal(tickets, &rec.TicketNumbers); err != nil {
		return nil, errs.Wrap(err, "failed to decode ticket numbers")
	}
	if err := json.Unmarshal(released, &rec.PNRsReleased); err != nil {
		return nil, errs.Wrap(err, "failed to decode released pnrs")
	}
	return &rec, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
