package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"farelock/internal/pkg/config"
	"farelock/internal/pkg/errs"
)

// Order is a provider-side payment order awaiting capture.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type Client struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	httpClient    *http.Client
}

func NewClient(cfg config.RazorpayConfig) *Client {
	return &Client{
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateOrder opens a provider order for amount whole currency units. The
// provider accounts in minor units, so the amount is converted here and
// nowhere else.
func (c *Client) CreateOrder(ctx context.Context, bookingID string, amount int64, currency string) (*Order, error) {
	body := map[string]any{
		"amount":   toMinorUnits(amount),
		"currency": currency,
		"receipt":  "rcpt_" + bookingID,
		"notes":    map[string]string{"bookingId": bookingID},
	}

	var order Order
	if err := c.post(ctx, "/orders", body, &order); err != nil {
		return nil, errs.Wrap(err, "failed to create payment order")
	}
	return &order, nil
}

func (c *Client) RefundPayment(ctx context.Context, paymentID string, amount int64, reason string) (*Refund, error) {
	body := map[string]any{
		"amount": toMinorUnits(amount),
		"notes":  map[string]string{"reason": reason},
	}

	var refund Refund
	if err := c.post(ctx, fmt.Sprintf("/payments/%s/refund", paymentID), body, &refund); err != nil {
		return nil, errs.Wrap(err, "failed to refund payment")
	}
	return &refund, nil
}

// VerifySignature checks the checkout callback signature: hex HMAC-SHA256
// over "orderId|paymentId" keyed with the API secret. Comparison is
// constant-time; anything but an exact match is a rejection.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(c.keySecret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func verifyHMAC(secret, payload, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "provider request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(err, "failed to read provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.Newf("provider returned status %d: %s", resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

func toMinorUnits(amount int64) int64 {
	return int64(math.Round(float64(amount) * 100))
}
