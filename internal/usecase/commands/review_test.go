package commands

import (
	"context"
	"testing"
	"time"

	"farelock/internal/domain/snapshot"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreviewedSnapshot(priceID string, supplierFare float64) *snapshot.Snapshot {
	s := reviewedSnapshot("")
	s.ID = uuid.New()
	s.PriceID = priceID
	s.SupplierFare = supplierFare
	s.IsReviewed = false
	s.ReviewBookingID = ""
	s.ReviewedSupplierFare = 0
	s.ReviewedFinalFare = 0
	s.IsHeld = false
	return s
}

func reviewResponse(bookingID string, totalFare float64, segmentFares ...float64) *supplier.ReviewResponse {
	resp := &supplier.ReviewResponse{
		Envelope:  supplier.Envelope{Status: supplier.StatusBlock{Success: true}},
		BookingID: bookingID,
	}
	resp.TotalPriceInfo.TotalFareDetail.FC.TF = totalFare
	for _, fare := range segmentFares {
		resp.TripInfos = append(resp.TripInfos, supplier.TripInfo{
			TotalPriceList: []supplier.PriceOption{
				{FD: supplier.FareDetail{Adult: &supplier.PaxFareDetail{FC: supplier.FareComponents{BF: fare}}}},
			},
		})
	}
	return resp
}

type reviewFixture struct {
	snapshots *fakeSnapshotRepo
	gateway   *fakeGateway
	publisher *fakePublisher
	clock     *clock.MockClock
	uc        ReviewCommands
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		snapshots: newFakeSnapshotRepo(),
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
		clock:     clock.NewMockClock(testBase.Add(time.Minute)),
	}
	f.uc = NewReviewUseCase(f.snapshots, f.gateway, f.publisher, testBookingCfg(), f.clock)
	return f
}

func TestReviewFare_LocksQuoteOntoSnapshot(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.reviewResp = reviewResponse("TJ123", 5000, 5000)

	result, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	require.NoError(t, err)
	assert.Equal(t, "TJ123", result.BookingID)
	assert.Equal(t, 5000.0, result.SupplierFare)
	// 5000 + 300 flat + 5% of 5000 = 5550, recomputed from the audit trail.
	assert.Equal(t, int64(5550), result.FinalFare)
	assert.False(t, result.FareAlert)

	stored := f.snapshots.byID[s.ID]
	assert.True(t, stored.IsReviewed)
	assert.Equal(t, "TJ123", stored.ReviewBookingID)
	assert.Equal(t, int64(5550), stored.ReviewedFinalFare)
}

func TestReviewFare_SecondCallSkipsSupplier(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.reviewResp = reviewResponse("TJ123", 5000, 5000)

	first, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	require.NoError(t, err)
	second, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	require.NoError(t, err)

	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, first.FinalFare, second.FinalFare)
	assert.Equal(t, 1, f.gateway.reviewCalls)
}

func TestReviewFare_DriftRaisesFareAlert(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	// Supplier quote moved by 100, past the threshold of 5.
	f.gateway.reviewResp = reviewResponse("TJ123", 5100, 5100)

	result, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	require.NoError(t, err)
	assert.True(t, result.FareAlert)
	// Markup reapplied on the drifted base: 5100 + 300 + 5% of 5100 = 5655.
	assert.Equal(t, int64(5655), result.FinalFare)
}

func TestReviewFare_SupplierAlertFlagHonored(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	resp := reviewResponse("TJ123", 5000, 5000)
	resp.Alerts = []supplier.Alert{{Type: supplier.AlertFare}}
	f.gateway.reviewResp = resp

	result, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	require.NoError(t, err)
	assert.True(t, result.FareAlert)
}

func TestReviewFare_ExpiredSnapshot(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.clock.Set(testBase.Add(16 * time.Minute))

	_, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	assert.ErrorIs(t, err, ErrSnapshotExpired)
	assert.Zero(t, f.gateway.reviewCalls)
}

func TestReviewFare_SupplierDecline(t *testing.T) {
	f := newReviewFixture(t)
	s := unreviewedSnapshot("price-1", 5000)
	require.NoError(t, f.snapshots.Create(context.Background(), s))
	f.gateway.reviewResp = &supplier.ReviewResponse{
		Envelope: supplier.Envelope{
			Status: supplier.StatusBlock{Success: false},
			Errors: []supplier.APIError{{ErrCode: "1000", Message: "session closed"}},
		},
	}

	_, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{s.ID})
	assert.ErrorIs(t, err, ErrSupplierRejected)
}

func TestReviewFare_MultiSegmentTotals(t *testing.T) {
	f := newReviewFixture(t)
	out := unreviewedSnapshot("price-out", 5000)
	back := unreviewedSnapshot("price-back", 4000)
	back.RouteIndex = 1
	require.NoError(t, f.snapshots.Create(context.Background(), out))
	require.NoError(t, f.snapshots.Create(context.Background(), back))
	f.gateway.reviewResp = reviewResponse("TJ777", 9000, 5000, 4000)

	result, err := f.uc.ReviewFare(context.Background(), []uuid.UUID{out.ID, back.ID})
	require.NoError(t, err)
	// 5550 outbound + (4000 + 300 + 200) return.
	assert.Equal(t, int64(5550+4500), result.FinalFare)
	assert.Equal(t, "TJ777", f.snapshots.byID[back.ID].ReviewBookingID)
}
