package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farelock/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.RazorpayConfig{
		BaseURL:       server.URL,
		KeyID:         "key-id",
		KeySecret:     "key-secret",
		WebhookSecret: "hook-secret",
		Timeout:       5 * time.Second,
	})
}

func TestClient_CreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "key-secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(555000), body["amount"], "amount must be sent in minor units")
		assert.Equal(t, "rcpt_TJS100", body["receipt"])

		_ = json.NewEncoder(w).Encode(Order{ID: "order_1", Amount: 555000, Currency: "INR"})
	})

	order, err := client.CreateOrder(context.Background(), "TJS100", 5550, "INR")

	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
}

func TestClient_RefundPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_9/refund", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(555000), body["amount"])

		_ = json.NewEncoder(w).Encode(Refund{ID: "rfnd_1", PaymentID: "pay_9", Amount: 555000})
	})

	refund, err := client.RefundPayment(context.Background(), "pay_9", 5550, "booking failed")

	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refund.ID)
}

func TestClient_CreateOrder_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"amount too small"}}`))
	})

	_, err := client.CreateOrder(context.Background(), "TJS100", 0, "INR")

	assert.Error(t, err)
}

func TestClient_VerifySignature(t *testing.T) {
	client := NewClient(config.RazorpayConfig{KeySecret: "key-secret"})

	valid := sign("key-secret", "order_1|pay_1")
	assert.True(t, client.VerifySignature("order_1", "pay_1", valid))
	assert.False(t, client.VerifySignature("order_1", "pay_1", valid[:len(valid)-1]+"0"))
	assert.False(t, client.VerifySignature("order_1", "pay_2", valid))
	assert.False(t, client.VerifySignature("order_1", "pay_1", ""))
}

func TestClient_VerifyWebhookSignature(t *testing.T) {
	client := NewClient(config.RazorpayConfig{WebhookSecret: "hook-secret"})
	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, client.VerifyWebhookSignature(body, sign("hook-secret", string(body))))
	assert.False(t, client.VerifyWebhookSignature(body, sign("wrong-secret", string(body))))
}
