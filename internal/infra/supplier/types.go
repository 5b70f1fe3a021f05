package supplier

import (
	"farelock/internal/domain/booking"
)

// The supplier reports success in an envelope and business failures as a list
// of coded errors. Transport-level failures are returned as Go errors by the
// client; everything in here is the supplier's own contract.

type StatusBlock struct {
	Success    bool `json:"success"`
	HTTPStatus int  `json:"httpStatus,omitempty"`
}

type APIError struct {
	ErrCode string `json:"errCode"`
	Message string `json:"message"`
	// For the duplicate-booking code the details field carries the original
	// supplier booking id.
	Details string `json:"details,omitempty"`
}

type Envelope struct {
	Status StatusBlock `json:"status"`
	Errors []APIError  `json:"errors,omitempty"`
}

// Fare components as quoted by the supplier. TF is the total fare, BF the
// base fare.
type FareComponents struct {
	TF float64 `json:"TF"`
	BF float64 `json:"BF"`
	NF float64 `json:"NF"`
}

type PaxFareDetail struct {
	FC FareComponents `json:"fC"`
}

type FareDetail struct {
	Adult  *PaxFareDetail `json:"ADULT,omitempty"`
	Child  *PaxFareDetail `json:"CHILD,omitempty"`
	Infant *PaxFareDetail `json:"INFANT,omitempty"`
}

type PriceOption struct {
	ID string     `json:"id"`
	FD FareDetail `json:"fd"`
}

type TripInfo struct {
	TotalPriceList []PriceOption `json:"totalPriceList"`
}

type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

const AlertFare = "FAREALERT"

type TotalPriceInfo struct {
	TotalFareDetail PaxFareDetail `json:"totalFareDetail"`
}

type ReviewRequest struct {
	PriceIDs []string `json:"priceIds"`
}

type ReviewResponse struct {
	Envelope
	BookingID      string         `json:"bookingId"`
	TotalPriceInfo TotalPriceInfo `json:"totalPriceInfo"`
	TripInfos      []TripInfo     `json:"tripInfos"`
	Alerts         []Alert        `json:"alerts,omitempty"`
}

// TotalFare returns the supplier-quoted total for the whole review.
func (r *ReviewResponse) TotalFare() (float64, bool) {
	tf := r.TotalPriceInfo.TotalFareDetail.FC.TF
	return tf, tf > 0
}

// SegmentBaseFare returns the adult base fare quoted for segment idx, or ok
// false when the response carries no figure for it.
func (r *ReviewResponse) SegmentBaseFare(idx int) (float64, bool) {
	if idx >= len(r.TripInfos) {
		return 0, false
	}
	options := r.TripInfos[idx].TotalPriceList
	if len(options) == 0 || options[0].FD.Adult == nil {
		return 0, false
	}
	return options[0].FD.Adult.FC.BF, true
}

func (r *ReviewResponse) HasFareAlert() bool {
	for _, a := range r.Alerts {
		if a.Type == AlertFare {
			return true
		}
	}
	return false
}

type BookRequest struct {
	BookingID     string               `json:"bookingId"`
	PaymentInfos  []PaymentInfo        `json:"paymentInfos,omitempty"`
	TravellerInfo []booking.Traveller  `json:"travellerInfo"`
	DeliveryInfo  booking.DeliveryInfo `json:"deliveryInfo"`
	ContactInfo   *booking.ContactInfo `json:"contactInfo,omitempty"`
	GSTInfo       *booking.GSTInfo     `json:"gstInfo,omitempty"`
}

type PaymentInfo struct {
	Amount float64 `json:"amount"`
}

type BookResponse struct {
	Envelope
	BookingID string `json:"bookingId,omitempty"`
	PNR       string `json:"pnr,omitempty"`
}

type SeatMapResponse struct {
	Envelope
	TripSeatMap TripSeatMap `json:"tripSeatMap"`
}

type TripSeatMap struct {
	TripSeat map[string]SegmentSeatMap `json:"tripSeat"`
}

type SegmentSeatMap struct {
	SeatsInfo SeatsInfo `json:"sInfo"`
}

type SeatsInfo struct {
	Seats []Seat `json:"seats"`
}

type Seat struct {
	Code     string  `json:"code"`
	IsBooked bool    `json:"isBooked"`
	Amount   float64 `json:"amount"`
}

// NormalizedSeatMap is the flat form handed to callers and used for seat
// validation: one entry per segment, selectable seats only distinguished by
// the IsBooked flag.
type NormalizedSegment struct {
	SegmentID string `json:"segmentId"`
	Seats     []Seat `json:"seats"`
}

type BookingOrder struct {
	Status string `json:"status"`
	PNR    string `json:"pnr,omitempty"`
}

type TravellerPNRInfo struct {
	PNRDetails          map[string]string `json:"pnrDetails,omitempty"`
	TicketNumberDetails map[string]string `json:"ticketNumberDetails,omitempty"`
}

type BookingDetailsResponse struct {
	Envelope
	Order          BookingOrder       `json:"order"`
	TravellerInfos []TravellerPNRInfo `json:"travellerInfos,omitempty"`
}

// Supplier order statuses observed around ticketing.
const (
	OrderStatusUnconfirmed = "UNCONFIRMED"
	OrderStatusOnHold      = "ON_HOLD"
	OrderStatusSuccess     = "SUCCESS"
)

// ConfirmablePreTicket reports whether an order may still be confirmed.
func ConfirmablePreTicket(status string) bool {
	return status == OrderStatusUnconfirmed || status == OrderStatusOnHold
}

// PNRBySegment flattens per-traveller PNR maps into one segment-keyed map.
func (r *BookingDetailsResponse) PNRBySegment() map[string]string {
	return mergeSegmentMaps(r.TravellerInfos, func(t TravellerPNRInfo) map[string]string {
		return t.PNRDetails
	})
}

// TicketsBySegment flattens per-traveller ticket numbers the same way.
func (r *BookingDetailsResponse) TicketsBySegment() map[string]string {
	return mergeSegmentMaps(r.TravellerInfos, func(t TravellerPNRInfo) map[string]string {
		return t.TicketNumberDetails
	})
}

func mergeSegmentMaps(infos []TravellerPNRInfo, pick func(TravellerPNRInfo) map[string]string) map[string]string {
	out := map[string]string{}
	for _, info := range infos {
		for segment, v := range pick(info) {
			out[segment] = v
		}
	}
	return out
}

type ReleasePNRRequest struct {
	BookingID string   `json:"bookingId"`
	PNRs      []string `json:"pnrs"`
}

type AmendmentType string

const AmendmentCancellation AmendmentType = "CANCELLATION"

type AmendmentTrip struct {
	Src           string   `json:"src"`
	Dest          string   `json:"dest"`
	DepartureDate string   `json:"departureDate"`
	Travellers    []string `json:"travellers,omitempty"`
}

type AmendmentRequest struct {
	BookingID string          `json:"bookingId"`
	Type      AmendmentType   `json:"type"`
	Remarks   string          `json:"remarks"`
	Trips     []AmendmentTrip `json:"trips,omitempty"`
}

type AmendmentResponse struct {
	Envelope
	AmendmentID     string  `json:"amendmentId,omitempty"`
	BookingID       string  `json:"bookingId,omitempty"`
	AmendmentStatus string  `json:"amendmentStatus,omitempty"`
	RefundableATA   float64 `json:"refundableAmount,omitempty"`
}

type FareRuleFlow string

const (
	FlowSearch        FareRuleFlow = "SEARCH"
	FlowReview        FareRuleFlow = "REVIEW"
	FlowBookingDetail FareRuleFlow = "BOOKING_DETAIL"
)

type FareRulesRequest struct {
	FlowType FareRuleFlow `json:"flowType"`
	ID       string       `json:"id"`
}

type FareRulesResponse struct {
	Envelope
	FareRule map[string]any `json:"farerule,omitempty"`
}
