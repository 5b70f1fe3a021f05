package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const seatKeyPrefix = "seats:hold:"

// SeatLedger keeps seat selections in redis under the supplier booking id.
// Entries carry the hold TTL so abandoned selections vanish on their own; a
// new selection replaces the previous set wholesale.
type SeatLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatLedger(client *redis.Client, ttl time.Duration) *SeatLedger {
	return &SeatLedger{client: client, ttl: ttl}
}

// Replace swaps the booking's seat holds for the given set. An empty set
// clears the key entirely.
func (l *SeatLedger) Replace(ctx context.Context, bookingID string, holds []booking.SeatHold) error {
	key := seatKeyPrefix + bookingID
	if len(holds) == 0 {
		if err := l.client.Del(ctx, key).Err(); err != nil {
			return errs.Wrap(err, "failed to clear seat holds")
		}
		return nil
	}

	payload, err := json.Marshal(holds)
	if err != nil {
		return errs.Wrap(err, "failed to encode seat holds")
	}
	if err := l.client.Set(ctx, key, payload, l.ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to store seat holds")
	}
	return nil
}

// Get returns the booking's current seat holds, or an empty set if none are
// held or the entry expired.
func (l *SeatLedger) Get(ctx context.Context, bookingID string) ([]booking.SeatHold, error) {
	raw, err := l.client.Get(ctx, seatKeyPrefix+bookingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to load seat holds")
	}

	var holds []booking.SeatHold
	if err := json.Unmarshal(raw, &holds); err != nil {
		return nil, errs.Wrap(err, "failed to decode seat holds")
	}
	return holds, nil
}

func (l *SeatLedger) Clear(ctx context.Context, bookingID string) error {
	if err := l.client.Del(ctx, seatKeyPrefix+bookingID).Err(); err != nil {
		return errs.Wrap(err, "failed to clear seat holds")
	}
	return nil
}
