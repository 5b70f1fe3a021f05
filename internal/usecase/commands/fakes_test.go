package commands

import (
	"context"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"
	"farelock/internal/infra"
	"farelock/internal/infra/cache"
	"farelock/internal/infra/events"
	"farelock/internal/infra/razorpay"
	"farelock/internal/infra/supplier"
	"farelock/internal/pkg/errs"

	"github.com/google/uuid"
)

// In-memory fakes implementing the command ports. They reproduce the
// conditional-update semantics of the real repositories so the idempotency
// and guard behavior is exercised for real.

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, errs.New(msg), infra.KindNotFound)
}

func conflict(msg string) error {
	return infra.WrapRepoErr(msg, errs.New(msg), infra.KindConflict)
}

type fakeSnapshotRepo struct {
	byID map[uuid.UUID]*snapshot.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{byID: map[uuid.UUID]*snapshot.Snapshot{}}
}

func (r *fakeSnapshotRepo) Create(_ context.Context, s *snapshot.Snapshot) error {
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *fakeSnapshotRepo) FindByID(_ context.Context, id uuid.UUID) (*snapshot.Snapshot, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, notFound("snapshot not found")
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSnapshotRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*snapshot.Snapshot, error) {
	out := make([]*snapshot.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, ok := r.byID[id]
		if !ok {
			return nil, notFound("snapshot not found")
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSnapshotRepo) FindByReviewBookingID(_ context.Context, bookingID string) ([]*snapshot.Snapshot, error) {
	var out []*snapshot.Snapshot
	for _, s := range r.byID {
		if s.ReviewBookingID == bookingID {
			cp := *s
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, notFound("no snapshot for booking id")
	}
	return out, nil
}

func (r *fakeSnapshotRepo) MarkReviewed(_ context.Context, ids []uuid.UUID, bookingID string, supplierFare float64, finalFare int64, fareAlert bool, now time.Time) error {
	for _, id := range ids {
		s := r.byID[id]
		if s.ReviewBookingID != "" && s.ReviewBookingID != bookingID {
			return conflict("review conflict")
		}
	}
	for _, id := range ids {
		s := r.byID[id]
		s.IsReviewed = true
		s.ReviewBookingID = bookingID
		s.ReviewedSupplierFare = supplierFare
		s.ReviewedFinalFare = finalFare
		s.FareAlert = fareAlert
		t := now
		if s.ReviewedAt == nil {
			s.ReviewedAt = &t
		}
	}
	return nil
}

func (r *fakeSnapshotRepo) MarkHeld(_ context.Context, bookingID string, now time.Time) error {
	held := false
	for _, s := range r.byID {
		if s.ReviewBookingID == bookingID {
			s.IsHeld = true
			t := now
			if s.HeldAt == nil {
				s.HeldAt = &t
			}
			held = true
		}
	}
	if !held {
		return notFound("no snapshot for booking id")
	}
	return nil
}

func (r *fakeSnapshotRepo) AdoptReviewBookingID(_ context.Context, from, to string, now time.Time) error {
	adopted := false
	for _, s := range r.byID {
		if s.ReviewBookingID == from || s.ReviewBookingID == to {
			s.ReviewBookingID = to
			s.IsHeld = true
			t := now
			if s.HeldAt == nil {
				s.HeldAt = &t
			}
			adopted = true
		}
	}
	if !adopted {
		return notFound("no snapshot for booking id")
	}
	return nil
}

func (r *fakeSnapshotRepo) ClaimConfirming(_ context.Context, bookingID string, now time.Time, window time.Duration) ([]*snapshot.Snapshot, error) {
	var matched, claimed []*snapshot.Snapshot
	for _, s := range r.byID {
		if s.ReviewBookingID != bookingID {
			continue
		}
		matched = append(matched, s)
		if s.ConfirmGuardOpen(now, window) {
			claimed = append(claimed, s)
		}
	}
	if len(matched) == 0 {
		return nil, notFound("no snapshot for booking id")
	}
	if len(claimed) != len(matched) {
		return nil, conflict("confirm guard held")
	}
	out := make([]*snapshot.Snapshot, 0, len(claimed))
	for _, s := range claimed {
		t := now
		s.ConfirmingAt = &t
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSnapshotRepo) ClearConfirming(_ context.Context, bookingID string, _ time.Time) error {
	for _, s := range r.byID {
		if s.ReviewBookingID == bookingID && s.FinalBookingID == "" {
			s.ConfirmingAt = nil
		}
	}
	return nil
}

func (r *fakeSnapshotRepo) MarkBooked(_ context.Context, bookingID, finalBookingID, pnr string, now time.Time) error {
	updated := false
	for _, s := range r.byID {
		if s.ReviewBookingID != bookingID {
			continue
		}
		if s.FinalBookingID != "" && s.FinalBookingID != finalBookingID {
			return conflict("booked conflict")
		}
		s.FinalBookingID = finalBookingID
		s.PNR = pnr
		s.ConfirmingAt = nil
		t := now
		if s.BookedAt == nil {
			s.BookedAt = &t
		}
		updated = true
	}
	if !updated {
		return notFound("no snapshot for booking id")
	}
	return nil
}

func (r *fakeSnapshotRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, s := range r.byID {
		if s.IsExpired(now) {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakePaymentRepo struct {
	byID map[uuid.UUID]*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: map[uuid.UUID]*payment.Payment{}}
}

func (r *fakePaymentRepo) CreateIfAbsent(ctx context.Context, p *payment.Payment) (*payment.Payment, bool, error) {
	if existing, err := r.FindOpenByBookingID(ctx, p.BookingID); err == nil {
		return existing, false, nil
	}
	cp := *p
	r.byID[p.ID] = &cp
	out := cp
	return &out, true, nil
}

func (r *fakePaymentRepo) FindOpenByBookingID(_ context.Context, bookingID string) (*payment.Payment, error) {
	for _, p := range r.byID {
		if p.BookingID == bookingID && p.Status == payment.StatusCreated {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("no open payment")
}

func (r *fakePaymentRepo) FindByProviderOrderID(_ context.Context, orderID string) (*payment.Payment, error) {
	for _, p := range r.byID {
		if p.ProviderOrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("no payment for order")
}

func (r *fakePaymentRepo) FindPaidByBookingID(_ context.Context, bookingID string) (*payment.Payment, error) {
	for _, p := range r.byID {
		if p.BookingID == bookingID && p.Status == payment.StatusPaid && p.RefundStatus != payment.RefundCompleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("no paid payment")
}

func (r *fakePaymentRepo) MarkPaid(_ context.Context, orderID, paymentID, signature string, now time.Time) (*payment.Payment, error) {
	for _, p := range r.byID {
		if p.ProviderOrderID != orderID {
			continue
		}
		switch {
		case p.Status == payment.StatusCreated:
			p.Status = payment.StatusPaid
			p.ProviderPaymentID = paymentID
			p.ProviderSignature = signature
			t := now
			p.PaidAt = &t
			cp := *p
			return &cp, nil
		case p.Status == payment.StatusPaid && p.ProviderPaymentID == paymentID:
			cp := *p
			return &cp, nil
		default:
			return nil, conflict("payment state conflict")
		}
	}
	return nil, notFound("no payment for order")
}

func (r *fakePaymentRepo) MarkFailed(_ context.Context, orderID string, _ time.Time) error {
	for _, p := range r.byID {
		if p.ProviderOrderID == orderID && p.Status == payment.StatusCreated {
			p.Status = payment.StatusFailed
		}
	}
	return nil
}

func (r *fakePaymentRepo) MarkRefunded(_ context.Context, id uuid.UUID, refundID string, amount int64, now time.Time) error {
	p, ok := r.byID[id]
	if !ok {
		return notFound("payment not found")
	}
	if p.RefundStatus == payment.RefundCompleted {
		return conflict("refund conflict")
	}
	p.Status = payment.StatusRefunded
	p.RefundStatus = payment.RefundCompleted
	p.RefundID = refundID
	p.RefundedAmount = amount
	t := now
	p.RefundedAt = &t
	return nil
}

type fakeBookingRepo struct {
	byBookingID map[string]*booking.Record
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byBookingID: map[string]*booking.Record{}}
}

func (r *fakeBookingRepo) CreateIfAbsent(_ context.Context, rec *booking.Record) (*booking.Record, bool, error) {
	if existing, ok := r.byBookingID[rec.BookingID]; ok {
		cp := *existing
		return &cp, true, nil
	}
	cp := *rec
	r.byBookingID[rec.BookingID] = &cp
	out := cp
	return &out, false, nil
}

func (r *fakeBookingRepo) FindByBookingID(_ context.Context, bookingID string) (*booking.Record, error) {
	rec, ok := r.byBookingID[bookingID]
	if !ok {
		return nil, notFound("booking record not found")
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeBookingRepo) UpdateDetails(_ context.Context, bookingID string, pnrDetails, ticketNumbers map[string]string, status booking.Status, _ time.Time) error {
	rec, ok := r.byBookingID[bookingID]
	if !ok {
		return notFound("booking record not found")
	}
	rec.PNRDetails = pnrDetails
	rec.TicketNumbers = ticketNumbers
	rec.Status = status
	return nil
}

func (r *fakeBookingRepo) SetReleased(_ context.Context, bookingID string, pnrs []string, status booking.Status, now time.Time) error {
	rec, ok := r.byBookingID[bookingID]
	if !ok {
		return notFound("booking record not found")
	}
	seen := map[string]bool{}
	for _, p := range rec.PNRsReleased {
		seen[p] = true
	}
	for _, p := range pnrs {
		if !seen[p] {
			rec.PNRsReleased = append(rec.PNRsReleased, p)
			seen[p] = true
		}
	}
	if rec.ReleasedAt == nil {
		t := now
		rec.ReleasedAt = &t
	}
	rec.Status = status
	return nil
}

type fakeRuleRepo struct {
	rules []pricing.Rule
}

func (r *fakeRuleRepo) FindActive(_ context.Context, _ pricing.ServiceType, _ string) ([]pricing.Rule, error) {
	return r.rules, nil
}

// fakeGateway scripts supplier responses per operation and records calls.
type fakeGateway struct {
	reviewResp     *supplier.ReviewResponse
	reviewErr      error
	reviewCalls    int
	seatMap        []supplier.NormalizedSegment
	holdOutcome    supplier.Outcome
	holdCalls      int
	instantOutcome supplier.Outcome
	instantResp    *supplier.BookResponse
	validate       supplier.Outcome
	confirmOutcome supplier.Outcome
	confirmAmounts []float64
	// details are consumed in order; the last one repeats.
	details       []*supplier.BookingDetailsResponse
	detailsCalls  int
	releaseCalls  int
	charges       *supplier.AmendmentResponse
	amendment     *supplier.AmendmentResponse
	amendmentInfo *supplier.AmendmentResponse
}

func okOutcome() supplier.Outcome {
	return supplier.Outcome{Kind: supplier.OutcomeOK}
}

func (g *fakeGateway) Review(context.Context, []string) (*supplier.ReviewResponse, error) {
	g.reviewCalls++
	return g.reviewResp, g.reviewErr
}

func (g *fakeGateway) GetSeatMap(context.Context, string) ([]supplier.NormalizedSegment, error) {
	return g.seatMap, nil
}

func (g *fakeGateway) HoldBooking(context.Context, supplier.BookRequest) (supplier.Outcome, error) {
	g.holdCalls++
	return g.holdOutcome, nil
}

func (g *fakeGateway) InstantBook(context.Context, supplier.BookRequest, float64) (supplier.Outcome, *supplier.BookResponse, error) {
	return g.instantOutcome, g.instantResp, nil
}

func (g *fakeGateway) ValidateFare(context.Context, string) (supplier.Outcome, error) {
	return g.validate, nil
}

func (g *fakeGateway) ConfirmBooking(_ context.Context, _ string, amount float64) (supplier.Outcome, error) {
	g.confirmAmounts = append(g.confirmAmounts, amount)
	return g.confirmOutcome, nil
}

func (g *fakeGateway) GetBookingDetails(context.Context, string) (*supplier.BookingDetailsResponse, error) {
	idx := g.detailsCalls
	if idx >= len(g.details) {
		idx = len(g.details) - 1
	}
	g.detailsCalls++
	return g.details[idx], nil
}

func (g *fakeGateway) ReleasePNR(context.Context, string, []string) (supplier.Outcome, error) {
	g.releaseCalls++
	return okOutcome(), nil
}

func (g *fakeGateway) GetAmendmentCharges(context.Context, supplier.AmendmentRequest) (*supplier.AmendmentResponse, error) {
	return g.charges, nil
}

func (g *fakeGateway) SubmitAmendment(context.Context, supplier.AmendmentRequest) (*supplier.AmendmentResponse, error) {
	return g.amendment, nil
}

func (g *fakeGateway) GetAmendmentDetails(context.Context, string) (*supplier.AmendmentResponse, error) {
	return g.amendmentInfo, nil
}

type fakeProvider struct {
	orders       []razorpay.Order
	refunds      []razorpay.Refund
	refundErr    error
	validSig     bool
	validWebhook bool
}

func (p *fakeProvider) CreateOrder(_ context.Context, bookingID string, amount int64, currency string) (*razorpay.Order, error) {
	order := razorpay.Order{
		ID:       "order_" + bookingID,
		Amount:   amount * 100,
		Currency: currency,
	}
	p.orders = append(p.orders, order)
	return &order, nil
}

func (p *fakeProvider) RefundPayment(_ context.Context, paymentID string, amount int64, _ string) (*razorpay.Refund, error) {
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	refund := razorpay.Refund{ID: "rfnd_" + paymentID, Amount: amount * 100}
	p.refunds = append(p.refunds, refund)
	return &refund, nil
}

func (p *fakeProvider) VerifySignature(string, string, string) bool {
	return p.validSig
}

func (p *fakeProvider) VerifyWebhookSignature([]byte, string) bool {
	return p.validWebhook
}

type fakeSeatLedger struct {
	holds map[string][]booking.SeatHold
}

func newFakeSeatLedger() *fakeSeatLedger {
	return &fakeSeatLedger{holds: map[string][]booking.SeatHold{}}
}

func (l *fakeSeatLedger) Replace(_ context.Context, bookingID string, holds []booking.SeatHold) error {
	if len(holds) == 0 {
		delete(l.holds, bookingID)
		return nil
	}
	l.holds[bookingID] = holds
	return nil
}

func (l *fakeSeatLedger) Get(_ context.Context, bookingID string) ([]booking.SeatHold, error) {
	return l.holds[bookingID], nil
}

func (l *fakeSeatLedger) Clear(_ context.Context, bookingID string) error {
	delete(l.holds, bookingID)
	return nil
}

type fakeDraftStore struct {
	drafts map[string]cache.Draft
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[string]cache.Draft{}}
}

func (s *fakeDraftStore) Save(_ context.Context, bookingID string, draft cache.Draft) error {
	s.drafts[bookingID] = draft
	return nil
}

func (s *fakeDraftStore) Get(_ context.Context, bookingID string) (*cache.Draft, error) {
	draft, ok := s.drafts[bookingID]
	if !ok {
		return nil, nil
	}
	return &draft, nil
}


type fakePublisher struct {
	published []events.BookingEvent
	notified  []events.BookingEvent
}

func (p *fakePublisher) Publish(_ context.Context, ev events.BookingEvent) error {
	p.published = append(p.published, ev)
	return nil
}

func (p *fakePublisher) Notify(_ context.Context, ev events.BookingEvent) error {
	p.published = append(p.published, ev)
	p.notified = append(p.notified, ev)
	return nil
}
