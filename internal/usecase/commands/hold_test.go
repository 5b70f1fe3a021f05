package commands

import (
	"context"
	"testing"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra/cache"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftFixture() cache.Draft {
	return cache.Draft{
		Travellers: []booking.Traveller{
			{Title: "Mr", Type: booking.PaxAdult, FirstName: "RAHUL", LastName: "SHARMA"},
		},
		ContactInfo: booking.ContactInfo{
			Emails:   []string{"rahul@example.com"},
			Contacts: []string{"+919876543210"},
		},
		DeliveryInfo: booking.DeliveryInfo{
			Emails:   []string{"rahul@example.com"},
			Contacts: []string{"+919876543210"},
		},
	}
}

func unheldSnapshot(bookingID string) *snapshot.Snapshot {
	s := reviewedSnapshot(bookingID)
	s.IsHeld = false
	return s
}

func holdRequest(bookingID string) HoldRequest {
	return HoldRequest{
		BookingID: bookingID,
		Travellers: []booking.Traveller{
			{Title: "Mr.", Type: booking.PaxAdult, FirstName: "Rahul", LastName: "Sharma"},
		},
		ContactInfo: booking.ContactInfo{
			Emails:   []string{"rahul@example.com"},
			Contacts: []string{"9876543210"},
		},
	}
}

type holdFixture struct {
	snapshots *fakeSnapshotRepo
	gateway   *fakeGateway
	drafts    *fakeDraftStore
	publisher *fakePublisher
	clock     *clock.MockClock
	uc        HoldCommands
}

func newHoldFixture(t *testing.T) *holdFixture {
	t.Helper()
	f := &holdFixture{
		snapshots: newFakeSnapshotRepo(),
		gateway:   &fakeGateway{},
		drafts:    newFakeDraftStore(),
		publisher: &fakePublisher{},
		clock:     clock.NewMockClock(testBase.Add(time.Minute)),
	}
	f.uc = NewHoldUseCase(f.snapshots, f.gateway, f.drafts, f.publisher, f.clock, testLogger())
	return f
}

func TestHoldBooking_Success(t *testing.T) {
	f := newHoldFixture(t)
	s := unheldSnapshot("TJ123")
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.holdOutcome = okOutcome()

	result, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	require.NoError(t, err)
	assert.Equal(t, "TJ123", result.BookingID)
	assert.False(t, result.Reused)
	assert.True(t, f.snapshots.byID[s.ID].IsHeld)

	draft, ok := f.drafts.drafts["TJ123"]
	require.True(t, ok)
	require.Len(t, draft.Travellers, 1)
	assert.Equal(t, "RAHUL", draft.Travellers[0].FirstName)
}

func TestHoldBooking_DuplicateReconcilesOnSupplierID(t *testing.T) {
	f := newHoldFixture(t)
	s := unheldSnapshot("TJ123")
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.holdOutcome = supplier.Outcome{
		Kind:      supplier.OutcomeDuplicate,
		BookingID: "TJS999",
		Errors:    []supplier.APIError{{ErrCode: "2502", Details: "TJS999"}},
	}

	result, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	require.NoError(t, err)
	assert.True(t, result.Reused)
	assert.Equal(t, "TJS999", result.BookingID)

	stored := f.snapshots.byID[s.ID]
	assert.Equal(t, "TJS999", stored.ReviewBookingID)
	assert.True(t, stored.IsHeld)
}

func TestHoldBooking_RepeatHoldSkipsSupplier(t *testing.T) {
	f := newHoldFixture(t)
	s := unheldSnapshot("TJ123")
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.holdOutcome = okOutcome()

	first, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	require.NoError(t, err)
	assert.False(t, first.Reused)
	require.Equal(t, 1, f.gateway.holdCalls)

	second, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, "TJ123", second.BookingID)
	assert.Equal(t, 1, f.gateway.holdCalls)
}

func TestHoldBooking_SupplierRejection(t *testing.T) {
	f := newHoldFixture(t)
	require.NoError(t, f.snapshots.Create(context.Background(), unheldSnapshot("TJ123")))
	f.gateway.holdOutcome = supplier.Outcome{
		Kind:   supplier.OutcomeRejected,
		Errors: []supplier.APIError{{ErrCode: "1000", Message: "sold out"}},
	}

	_, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	assert.ErrorIs(t, err, ErrSupplierRejected)
}

func TestHoldBooking_ExpiredSnapshot(t *testing.T) {
	f := newHoldFixture(t)
	require.NoError(t, f.snapshots.Create(context.Background(), unheldSnapshot("TJ123")))
	f.clock.Set(testBase.Add(16 * time.Minute))

	_, err := f.uc.HoldBooking(context.Background(), holdRequest("TJ123"))
	assert.ErrorIs(t, err, ErrSnapshotExpired)
	assert.Zero(t, f.gateway.holdCalls)
}

func TestHoldBooking_UnknownBooking(t *testing.T) {
	f := newHoldFixture(t)

	_, err := f.uc.HoldBooking(context.Background(), holdRequest("NOPE"))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestHoldBooking_InvalidTraveller(t *testing.T) {
	f := newHoldFixture(t)
	require.NoError(t, f.snapshots.Create(context.Background(), unheldSnapshot("TJ123")))

	req := holdRequest("TJ123")
	req.Travellers[0].FirstName = ""
	_, err := f.uc.HoldBooking(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.gateway.holdCalls)
}

func TestHoldBooking_NoTravellers(t *testing.T) {
	f := newHoldFixture(t)
	require.NoError(t, f.snapshots.Create(context.Background(), unheldSnapshot("TJ123")))

	req := holdRequest("TJ123")
	req.Travellers = nil
	_, err := f.uc.HoldBooking(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.gateway.holdCalls)
}
