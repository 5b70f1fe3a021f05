package response

import (
	"time"

	"farelock/internal/domain/booking"
	"farelock/internal/infra/supplier"
	"farelock/internal/usecase/commands"
	"farelock/internal/usecase/queries"
)

type ReviewResponse struct {
	BookingID    string              `json:"bookingId"`
	SupplierFare float64             `json:"supplierFare"`
	FinalFare    int64               `json:"finalFare"`
	FareAlert    bool                `json:"fareAlert"`
	Snapshots    []*SnapshotResponse `json:"snapshots"`
}

func FromReviewResult(r *commands.ReviewResult) *ReviewResponse {
	return &ReviewResponse{
		BookingID:    r.BookingID,
		SupplierFare: r.SupplierFare,
		FinalFare:    r.FinalFare,
		FareAlert:    r.FareAlert,
		Snapshots:    FromSnapshots(r.Snapshots),
	}
}

type HoldResponse struct {
	BookingID string `json:"bookingId"`
	Reused    bool   `json:"reused"`
}

type ConfirmResponse struct {
	BookingID     string            `json:"bookingId"`
	PNR           string            `json:"pnr,omitempty"`
	Status        booking.Status    `json:"status"`
	FinalFare     int64             `json:"finalFare"`
	PNRDetails    map[string]string `json:"pnrDetails,omitempty"`
	TicketNumbers map[string]string `json:"ticketNumbers,omitempty"`
	BookedAt      time.Time         `json:"bookedAt"`
	Reused        bool              `json:"reused"`
}

func FromConfirmResult(r *commands.ConfirmResult) *ConfirmResponse {
	return &ConfirmResponse{
		BookingID:     r.Booking.BookingID,
		PNR:           r.Booking.PNR,
		Status:        r.Booking.Status,
		FinalFare:     r.Booking.FinalFare,
		PNRDetails:    r.Booking.PNRDetails,
		TicketNumbers: r.Booking.TicketNumbers,
		BookedAt:      r.Booking.BookedAt,
		Reused:        r.Reused,
	}
}

type BookingResponse struct {
	BookingID     string              `json:"bookingId"`
	PNR           string              `json:"pnr,omitempty"`
	Status        booking.Status      `json:"status"`
	SupplierState string              `json:"supplierState,omitempty"`
	FinalFare     int64               `json:"finalFare"`
	Travellers    []booking.Traveller `json:"travellers,omitempty"`
	PNRDetails    map[string]string   `json:"pnrDetails,omitempty"`
	TicketNumbers map[string]string   `json:"ticketNumbers,omitempty"`
	BookedAt      time.Time           `json:"bookedAt"`
	ReleasedAt    *time.Time          `json:"releasedAt,omitempty"`
	PNRsReleased  []string            `json:"pnrsReleased,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		BookingID:     v.BookingID,
		PNR:           v.PNR,
		Status:        v.Status,
		SupplierState: v.SupplierState,
		FinalFare:     v.FinalFare,
		Travellers:    v.Travellers,
		PNRDetails:    v.PNRDetails,
		TicketNumbers: v.TicketNumbers,
		BookedAt:      v.BookedAt,
		ReleasedAt:    v.ReleasedAt,
		PNRsReleased:  v.PNRsReleased,
	}
}

type CancellationChargesResponse struct {
	AmendmentID      string  `json:"amendmentId,omitempty"`
	AmendmentStatus  string  `json:"amendmentStatus,omitempty"`
	RefundableAmount float64 `json:"refundableAmount"`
}

func FromAmendment(a *supplier.AmendmentResponse) *CancellationChargesResponse {
	return &CancellationChargesResponse{
		AmendmentID:      a.AmendmentID,
		AmendmentStatus:  a.AmendmentStatus,
		RefundableAmount: a.RefundableATA,
	}
}

type CancellationResponse struct {
	AmendmentID string `json:"amendmentId"`
	Refunded    bool   `json:"refunded"`
	RefundID    string `json:"refundId,omitempty"`
}

type SeatHoldResponse struct {
	TravellerIndex int    `json:"travellerIndex"`
	SegmentID      string `json:"segmentId"`
	SeatCode       string `json:"seatCode"`
	Price          int64  `json:"price"`
}

func FromSeatHolds(holds []booking.SeatHold) []SeatHoldResponse {
	out := make([]SeatHoldResponse, 0, len(holds))
	for _, h := range holds {
		out = append(out, SeatHoldResponse{
			TravellerIndex: h.TravellerIndex,
			SegmentID:      h.SegmentID,
			SeatCode:       h.SeatCode,
			Price:          h.Price,
		})
	}
	return out
}
