package api

import (
	"net/http"

	reqdto "farelock/internal/handler/dto/request"
	resdto "farelock/internal/handler/dto/response"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SnapshotHandler struct {
	pricing commands.PricingCommands
	review  commands.ReviewCommands
	queries queries.BookingQueries
}

func NewSnapshotHandler(
	pricing commands.PricingCommands,
	review commands.ReviewCommands,
	queries queries.BookingQueries,
) *SnapshotHandler {
	return &SnapshotHandler{
		pricing: pricing,
		review:  review,
		queries: queries,
	}
}

// LockPrice freezes the quoted fares of the selected offers for the
// snapshot window so later steps price against the same figures.
func (h *SnapshotHandler) LockPrice(c *gin.Context) {
	var req reqdto.LockPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	snapshots, err := h.pricing.LockPrice(c.Request.Context(), req.ToCommand())
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"snapshots": resdto.FromSnapshots(snapshots)})
}

func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid snapshot id"})
		return
	}

	s, err := h.queries.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSnapshot(s))
}

// ReviewFare runs the supplier fare re-check on the locked snapshots and
// binds them to the booking id the supplier returns.
func (h *SnapshotHandler) ReviewFare(c *gin.Context) {
	var req reqdto.ReviewFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.review.ReviewFare(c.Request.Context(), req.SnapshotIDs)
	if err != nil {
		respondCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReviewResult(result))
}
