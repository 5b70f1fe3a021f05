package api

import (
	"errors"
	"net/http"

	"farelock/internal/handler/httperr"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// respondCommandError maps usecase sentinels onto HTTP statuses. A confirm
// failure that happened after capture carries its refund outcome in the body
// so the client can tell the customer whether money is coming back.
func respondCommandError(c *gin.Context, err error) {
	var comp *commands.CompensationError
	if errors.As(err, &comp) {
		body := gin.H{
			"error":    "Booking could not be completed",
			"refunded": comp.Refunded,
		}
		if comp.RefundID != "" {
			body["refundId"] = comp.RefundID
		}
		c.JSON(http.StatusBadGateway, body)
		return
	}

	switch {
	case errors.Is(err, commands.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, commands.ErrSnapshotNotFound),
		errors.Is(err, queries.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Price snapshot not found"})
	case errors.Is(err, commands.ErrBookingNotFound),
		errors.Is(err, queries.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, commands.ErrSnapshotExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Price snapshot expired"})
	case errors.Is(err, commands.ErrReviewConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Snapshot already reviewed under another booking"})
	case errors.Is(err, commands.ErrConfirmInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Confirmation already in progress"})
	case errors.Is(err, commands.ErrPaymentConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already settled differently"})
	case errors.Is(err, commands.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "No captured payment for booking"})
	case errors.Is(err, commands.ErrSignatureInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature invalid"})
	case errors.Is(err, commands.ErrTicketingTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Ticketing still in progress, retry the confirmation"})
	case errors.Is(err, commands.ErrSeatUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Selected seat unavailable"})
	case errors.Is(err, commands.ErrSupplierRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Supplier rejected the request"})
	case errors.Is(err, queries.ErrInvalidFlow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fare rule flow"})
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
