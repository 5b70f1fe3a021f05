package request

import (
	"farelock/internal/usecase/commands"
)

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpayOrderId" binding:"required"`
	PaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature string `json:"razorpaySignature" binding:"required"`
}

func (r VerifyPaymentRequest) ToCommand() commands.VerifyPaymentRequest {
	return commands.VerifyPaymentRequest{
		OrderID:   r.OrderID,
		PaymentID: r.PaymentID,
		Signature: r.Signature,
	}
}
