package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"
)

// Supplier API paths, relative to the configured base URL.
const (
	pathFareRule         = "/fms/v2/farerule"
	pathReview           = "/fms/v1/review"
	pathSeatMap          = "/fms/v1/seat"
	pathBook             = "/oms/v1/air/book"
	pathFareValidate     = "/oms/v1/air/fare-validate"
	pathConfirmBook      = "/oms/v1/air/confirm-book"
	pathBookingDetails   = "/oms/v1/booking-details"
	pathReleasePNR       = "/oms/v1/air/unhold"
	pathAmendmentCharges = "/oms/v1/air/amendment/amendment-charges"
	pathSubmitAmendment  = "/oms/v1/air/amendment/submit-amendment"
	pathAmendmentDetails = "/oms/v1/air/amendment/amendment-details"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.SupplierConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// post sends one supplier call and decodes the body into out. Non-2xx
// responses still carry the supplier envelope, so the body is decoded
// regardless of status and business failure is left to the envelope.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, "failed to encode supplier request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "failed to build supplier request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "supplier request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(err, "failed to read supplier response")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error("undecodable supplier response",
			"path", path, "status", resp.StatusCode)
		return errs.Wrapf(err, "failed to decode supplier response (status %d)", resp.StatusCode)
	}
	return nil
}

func (c *Client) Review(ctx context.Context, priceIDs []string) (*ReviewResponse, error) {
	var out ReviewResponse
	if err := c.post(ctx, pathReview, ReviewRequest{PriceIDs: priceIDs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSeatMap(ctx context.Context, bookingID string) ([]NormalizedSegment, error) {
	var out SeatMapResponse
	if err := c.post(ctx, pathSeatMap, map[string]string{"bookingId": bookingID}, &out); err != nil {
		return nil, err
	}
	if !out.Status.Success {
		return nil, errs.Newf("seat map fetch rejected: %s", firstErrorMessage(out.Errors))
	}
	return normalizeSeatMap(out.TripSeatMap), nil
}

// HoldBooking reserves inventory without payment capture.
func (c *Client) HoldBooking(ctx context.Context, req BookRequest) (Outcome, error) {
	req.PaymentInfos = nil
	var out BookResponse
	if err := c.post(ctx, pathBook, req, &out); err != nil {
		return Outcome{}, err
	}
	return Classify(out.Envelope), nil
}

// InstantBook books and captures in one supplier call. The amount must be the
// reviewed supplier fare, never the retail fare.
func (c *Client) InstantBook(ctx context.Context, req BookRequest, amount float64) (Outcome, *BookResponse, error) {
	req.PaymentInfos = []PaymentInfo{{Amount: amount}}
	var out BookResponse
	if err := c.post(ctx, pathBook, req, &out); err != nil {
		return Outcome{}, nil, err
	}
	return Classify(out.Envelope), &out, nil
}

func (c *Client) ValidateFare(ctx context.Context, bookingID string) (Outcome, error) {
	var out Envelope
	if err := c.post(ctx, pathFareValidate, map[string]string{"bookingId": bookingID}, &out); err != nil {
		return Outcome{}, err
	}
	return Classify(out), nil
}

func (c *Client) ConfirmBooking(ctx context.Context, bookingID string, amount float64) (Outcome, error) {
	body := map[string]any{
		"bookingId":    bookingID,
		"paymentInfos": []PaymentInfo{{Amount: amount}},
	}
	var out Envelope
	if err := c.post(ctx, pathConfirmBook, body, &out); err != nil {
		return Outcome{}, err
	}
	return Classify(out), nil
}

func (c *Client) GetBookingDetails(ctx context.Context, bookingID string) (*BookingDetailsResponse, error) {
	var out BookingDetailsResponse
	if err := c.post(ctx, pathBookingDetails, map[string]string{"bookingId": bookingID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReleasePNR(ctx context.Context, bookingID string, pnrs []string) (Outcome, error) {
	var out Envelope
	if err := c.post(ctx, pathReleasePNR, ReleasePNRRequest{BookingID: bookingID, PNRs: pnrs}, &out); err != nil {
		return Outcome{}, err
	}
	return Classify(out), nil
}

func (c *Client) GetAmendmentCharges(ctx context.Context, req AmendmentRequest) (*AmendmentResponse, error) {
	var out AmendmentResponse
	if err := c.post(ctx, pathAmendmentCharges, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitAmendment(ctx context.Context, req AmendmentRequest) (*AmendmentResponse, error) {
	var out AmendmentResponse
	if err := c.post(ctx, pathSubmitAmendment, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAmendmentDetails(ctx context.Context, amendmentID string) (*AmendmentResponse, error) {
	var out AmendmentResponse
	if err := c.post(ctx, pathAmendmentDetails, map[string]string{"amendmentId": amendmentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetFareRules(ctx context.Context, flow FareRuleFlow, id string) (*FareRulesResponse, error) {
	var out FareRulesResponse
	if err := c.post(ctx, pathFareRule, FareRulesRequest{FlowType: flow, ID: id}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func normalizeSeatMap(m TripSeatMap) []NormalizedSegment {
	segments := make([]NormalizedSegment, 0, len(m.TripSeat))
	for segmentID, segment := range m.TripSeat {
		segments = append(segments, NormalizedSegment{
			SegmentID: segmentID,
			Seats:     segment.SeatsInfo.Seats,
		})
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].SegmentID < segments[j].SegmentID
	})
	return segments
}

func firstErrorMessage(errors []APIError) string {
	if len(errors) == 0 {
		return "no error detail"
	}
	return errors[0].Message
}
