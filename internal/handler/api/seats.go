package api

import (
	"net/http"

	reqdto "farelock/internal/handler/dto/request"
	resdto "farelock/internal/handler/dto/response"
	"farelock/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	seats commands.SeatCommands
}

func NewSeatHandler(seats commands.SeatCommands) *SeatHandler {
	return &SeatHandler{seats: seats}
}

func (h *SeatHandler) GetSeatMap(c *gin.Context) {
	segments, err := h.seats.GetSeatMap(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

// SelectSeats replaces the booking's seat holds with the submitted set. An
// empty set clears the holds.
func (h *SeatHandler) SelectSeats(c *gin.Context) {
	var req reqdto.SeatSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	holds, err := h.seats.SelectSeats(c.Request.Context(), c.Param("bookingId"), req.ToCommand())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"seats": resdto.FromSeatHolds(holds)})
}
