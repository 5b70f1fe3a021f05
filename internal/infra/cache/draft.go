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

const draftKeyPrefix = "booking:draft:"

// Draft is the passenger payload captured at hold time and replayed when the
// confirmed booking record is written. It lives only as long as the snapshot
// window; a confirm after expiry never gets this far.
type Draft struct {
	Travellers   []booking.Traveller  `json:"travellers"`
	ContactInfo  booking.ContactInfo  `json:"contactInfo"`
	DeliveryInfo booking.DeliveryInfo `json:"deliveryInfo"`
	GSTInfo      *booking.GSTInfo     `json:"gstInfo,omitempty"`
}

type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) Save(ctx context.Context, bookingID string, draft Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return errs.Wrap(err, "failed to encode booking draft")
	}
	if err := s.client.Set(ctx, draftKeyPrefix+bookingID, payload, s.ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to store booking draft")
	}
	return nil
}

// Get returns the draft for the booking id, or nil when none was stored or
// it already expired.
func (s *DraftStore) Get(ctx context.Context, bookingID string) (*Draft, error) {
	raw, err := s.client.Get(ctx, draftKeyPrefix+bookingID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to load booking draft")
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, errs.Wrap(err, "failed to decode booking draft")
	}
	return &draft, nil
}
