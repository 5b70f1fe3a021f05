package response

import (
	"time"

	"farelock/internal/domain/payment"
)

type OrderResponse struct {
	OrderID   string `json:"orderId"`
	BookingID string `json:"bookingId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reused    bool   `json:"reused"`
}

func FromOrder(p *payment.Payment, reused bool) *OrderResponse {
	return &OrderResponse{
		OrderID:   p.ProviderOrderID,
		BookingID: p.BookingID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Reused:    reused,
	}
}

type PaymentResponse struct {
	BookingID string         `json:"bookingId"`
	OrderID   string         `json:"orderId"`
	PaymentID string         `json:"paymentId"`
	Amount    int64          `json:"amount"`
	Status    payment.Status `json:"status"`
	PaidAt    *time.Time     `json:"paidAt,omitempty"`
}

func FromPayment(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		BookingID: p.BookingID,
		OrderID:   p.ProviderOrderID,
		PaymentID: p.ProviderPaymentID,
		Amount:    p.Amount,
		Status:    p.Status,
		PaidAt:    p.PaidAt,
	}
}
