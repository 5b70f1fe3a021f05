package api

import (
	"net/http"

	reqdto "farelock/internal/handler/dto/request"
	resdto "farelock/internal/handler/dto/response"
	"farelock/internal/infra/supplier"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	hold    commands.HoldCommands
	confirm commands.ConfirmCommands
	instant commands.InstantBookCommands
	cancel  commands.CancelCommands
	queries queries.BookingQueries
}

func NewBookingHandler(
	hold commands.HoldCommands,
	confirm commands.ConfirmCommands,
	instant commands.InstantBookCommands,
	cancel commands.CancelCommands,
	queries queries.BookingQueries,
) *BookingHandler {
	return &BookingHandler{
		hold:    hold,
		confirm: confirm,
		instant: instant,
		cancel:  cancel,
		queries: queries,
	}
}

func (h *BookingHandler) HoldBooking(c *gin.Context) {
	var req reqdto.HoldBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.hold.HoldBooking(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, resdto.HoldResponse{BookingID: result.BookingID, Reused: result.Reused})
}

// ConfirmBooking issues the supplier confirmation for a paid hold and waits
// for ticketing. Safe to retry: a booking already confirmed returns the
// stored record.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")

	result, err := h.confirm.ConfirmBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromConfirmResult(result))
}

// InstantBook books and tickets in one step for offers that cannot be held.
func (h *BookingHandler) InstantBook(c *gin.Context) {
	var req reqdto.HoldBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.instant.InstantBook(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromConfirmResult(result))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	view, err := h.queries.GetBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *BookingHandler) GetFareRules(c *gin.Context) {
	flow := supplier.FareRuleFlow(c.Query("flow"))
	id := c.Query("id")

	resp, err := h.queries.GetFareRules(c.Request.Context(), flow, id)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetCancellationCharges(c *gin.Context) {
	var req reqdto.CancellationChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.cancel.GetCancellationCharges(c.Request.Context(), c.Param("bookingId"), req.ToTrips())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAmendment(resp))
}

func (h *BookingHandler) SubmitCancellation(c *gin.Context) {
	var req reqdto.CancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.cancel.SubmitCancellation(c.Request.Context(), req.ToCommand(c.Param("bookingId")))
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.CancellationResponse{
		AmendmentID: result.AmendmentID,
		Refunded:    result.Refunded,
		RefundID:    result.RefundID,
	})
}

func (h *BookingHandler) GetCancellationStatus(c *gin.Context) {
	resp, err := h.cancel.GetCancellationStatus(c.Request.Context(), c.Param("amendmentId"))
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAmendment(resp))
}

func (h *BookingHandler) ReleasePNR(c *gin.Context) {
	var req reqdto.ReleasePNRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.cancel.ReleasePNR(c.Request.Context(), c.Param("bookingId"), req.PNRs); err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": req.PNRs})
}
