package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/domain/payment"
	"farelock/internal/domain/snapshot"
	"farelock/internal/handler/api"
	"farelock/internal/infra/supplier"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubConfirm struct {
	result *commands.ConfirmResult
	err    error
}

func (s *stubConfirm) ConfirmBooking(_ context.Context, _ string) (*commands.ConfirmResult, error) {
	return s.result, s.err
}

type stubHold struct {
	result *commands.HoldResult
	err    error
}

func (s *stubHold) HoldBooking(_ context.Context, _ commands.HoldRequest) (*commands.HoldResult, error) {
	return s.result, s.err
}

type stubInstant struct {
	result *commands.ConfirmResult
	err    error
}

func (s *stubInstant) InstantBook(_ context.Context, _ commands.HoldRequest) (*commands.ConfirmResult, error) {
	return s.result, s.err
}

type stubCancel struct {
	charges *supplier.AmendmentResponse
	result  *commands.CancellationResult
	err     error
}

func (s *stubCancel) GetCancellationCharges(_ context.Context, _ string, _ []supplier.AmendmentTrip) (*supplier.AmendmentResponse, error) {
	return s.charges, s.err
}

func (s *stubCancel) SubmitCancellation(_ context.Context, _ commands.CancellationRequest) (*commands.CancellationResult, error) {
	return s.result, s.err
}

func (s *stubCancel) GetCancellationStatus(_ context.Context, _ string) (*supplier.AmendmentResponse, error) {
	return s.charges, s.err
}

func (s *stubCancel) ReleasePNR(_ context.Context, _ string, _ []string) error {
	return s.err
}

type stubQueries struct {
	view     *queries.BookingView
	snapshot *snapshot.Snapshot
	err      error
}

func (s *stubQueries) GetBooking(_ context.Context, _ string) (*queries.BookingView, error) {
	return s.view, s.err
}

func (s *stubQueries) GetSnapshot(_ context.Context, _ uuid.UUID) (*snapshot.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubQueries) GetFareRules(_ context.Context, _ supplier.FareRuleFlow, _ string) (*supplier.FareRulesResponse, error) {
	return nil, s.err
}

type BookingHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	confirm *stubConfirm
	hold    *stubHold
	cancel  *stubCancel
	queries *stubQueries
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.confirm = &stubConfirm{}
	s.hold = &stubHold{}
	s.cancel = &stubCancel{}
	s.queries = &stubQueries{}

	handler := api.NewBookingHandler(s.hold, s.confirm, &stubInstant{}, s.cancel, s.queries)

	s.router.POST("/bookings/hold", handler.HoldBooking)
	s.router.POST("/bookings/:bookingId/confirm", handler.ConfirmBooking)
	s.router.GET("/bookings/:bookingId", handler.GetBooking)
	s.router.POST("/bookings/:bookingId/cancellation", handler.SubmitCancellation)
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *BookingHandlerTestSuite) TestConfirmReturnsRecord() {
	s.confirm.result = &commands.ConfirmResult{
		Booking: &booking.Record{
			BookingID: "TJS123",
			PNR:       "ABCDEF",
			Status:    booking.StatusTicketed,
			FinalFare: 5550,
			BookedAt:  time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC),
		},
	}

	rec := s.do(http.MethodPost, "/bookings/TJS123/confirm", nil)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(s.T(), "TJS123", body["bookingId"])
	require.Equal(s.T(), "TICKETED", body["status"])
	require.Equal(s.T(), false, body["reused"])
}

func (s *BookingHandlerTestSuite) TestConfirmInProgressMapsToConflict() {
	s.confirm.err = commands.ErrConfirmInProgress

	rec := s.do(http.MethodPost, "/bookings/TJS123/confirm", nil)

	require.Equal(s.T(), http.StatusConflict, rec.Code)
}

func (s *BookingHandlerTestSuite) TestConfirmExpiredMapsToGone() {
	s.confirm.err = commands.ErrSnapshotExpired

	rec := s.do(http.MethodPost, "/bookings/TJS123/confirm", nil)

	require.Equal(s.T(), http.StatusGone, rec.Code)
}

func (s *BookingHandlerTestSuite) TestConfirmCompensationCarriesRefundOutcome() {
	s.confirm.err = &commands.CompensationError{
		Refunded: true,
		RefundID: "rfnd_pay123",
		Cause:    commands.ErrTicketingTimeout,
	}

	rec := s.do(http.MethodPost, "/bookings/TJS123/confirm", nil)

	require.Equal(s.T(), http.StatusBadGateway, rec.Code)
	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(s.T(), true, body["refunded"])
	require.Equal(s.T(), "rfnd_pay123", body["refundId"])
}

func (s *BookingHandlerTestSuite) TestHoldRejectsMalformedBody() {
	rec := s.do(http.MethodPost, "/bookings/hold", map[string]any{"bookingId": ""})

	require.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *BookingHandlerTestSuite) TestHoldReusedReturnsOK() {
	s.hold.result = &commands.HoldResult{BookingID: "TJS999", Reused: true}

	rec := s.do(http.MethodPost, "/bookings/hold", map[string]any{
		"bookingId": "TJ123",
		"travellers": []map[string]any{{
			"title": "Mr", "type": "ADULT", "firstName": "Asha", "lastName": "Rao",
		}},
		"contactInfo": map[string]any{
			"emails":   []string{"asha@example.com"},
			"contacts": []string{"9999999999"},
		},
	})

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(s.T(), "TJS999", body["bookingId"])
	require.Equal(s.T(), true, body["reused"])
}

func (s *BookingHandlerTestSuite) TestGetBookingNotFound() {
	s.queries.err = queries.ErrBookingNotFound

	rec := s.do(http.MethodGet, "/bookings/NOPE", nil)

	require.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *BookingHandlerTestSuite) TestSubmitCancellation() {
	s.cancel.result = &commands.CancellationResult{
		AmendmentID: "amd_1",
		Refunded:    true,
		RefundID:    "rfnd_1",
	}

	rec := s.do(http.MethodPost, "/bookings/TJS123/cancellation", map[string]any{
		"remarks":          "plans changed",
		"refundableAmount": 4800,
	})

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(s.T(), "amd_1", body["amendmentId"])
	require.Equal(s.T(), true, body["refunded"])
}

type stubPayments struct {
	order    *commands.CreateOrderResult
	payment  *payment.Payment
	err      error
	webhooks [][]byte
}

func (s *stubPayments) CreateOrder(_ context.Context, _ string) (*commands.CreateOrderResult, error) {
	return s.order, s.err
}

func (s *stubPayments) VerifyPayment(_ context.Context, _ commands.VerifyPaymentRequest) (*payment.Payment, error) {
	return s.payment, s.err
}

func (s *stubPayments) HandleWebhook(_ context.Context, body []byte, _ string) error {
	s.webhooks = append(s.webhooks, body)
	return s.err
}

func TestPaymentWebhookPassesRawBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	stub := &stubPayments{}
	handler := api.NewPaymentHandler(stub)
	router.POST("/payments/webhook", handler.Webhook)

	raw := []byte(`{"event":"payment.captured","payload":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(raw))
	req.Header.Set("X-Razorpay-Signature", "sig")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.webhooks, 1)
	require.Equal(t, raw, stub.webhooks[0])
}

func TestPaymentCreateOrderReuse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	stub := &stubPayments{order: &commands.CreateOrderResult{
		Payment: &payment.Payment{
			BookingID:       "TJS123",
			ProviderOrderID: "order_abc",
			Amount:          5900,
			Currency:        "INR",
		},
		Reused: true,
	}}
	handler := api.NewPaymentHandler(stub)
	router.POST("/payments/:bookingId/order", handler.CreateOrder)

	req := httptest.NewRequest(http.MethodPost, "/payments/TJS123/order", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "order_abc", body["orderId"])
	require.Equal(t, true, body["reused"])
}
