package api

import (
	"io"
	"net/http"

	reqdto "farelock/internal/handler/dto/request"
	resdto "farelock/internal/handler/dto/response"
	"farelock/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments commands.PaymentCommands
}

func NewPaymentHandler(payments commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateOrder opens a provider order for the booking's chargeable amount.
// Calling it again while an order is open returns the same order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	result, err := h.payments.CreateOrder(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondCommandError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromOrder(result.Payment, result.Reused))
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req reqdto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	p, err := h.payments.VerifyPayment(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromPayment(p))
}

// Webhook receives provider events. The signature covers the raw body, so
// the body is read before any binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.payments.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
