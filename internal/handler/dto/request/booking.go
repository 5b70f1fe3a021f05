package request

import (
	"farelock/internal/domain/booking"
	"farelock/internal/infra/supplier"
	"farelock/internal/usecase/commands"

	"github.com/google/uuid"
)

type ReviewFareRequest struct {
	SnapshotIDs []uuid.UUID `json:"snapshotIds" binding:"required,min=1"`
}

type TravellerRequest struct {
	Title         string `json:"title" binding:"required"`
	Type          string `json:"type" binding:"required"`
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	PassportNo    string `json:"passportNo,omitempty"`
	PassportExp   string `json:"passportExpiry,omitempty"`
	PassportNat   string `json:"passportNationality,omitempty"`
	PassportIssue string `json:"passportIssueDate,omitempty"`
	DocumentID    string `json:"documentId,omitempty"`
}

type ContactInfoRequest struct {
	Emails   []string `json:"emails" binding:"required,min=1"`
	Contacts []string `json:"contacts" binding:"required,min=1"`
	ECN      string   `json:"emergencyContact,omitempty"`
}

type DeliveryInfoRequest struct {
	Emails   []string `json:"emails,omitempty"`
	Contacts []string `json:"contacts,omitempty"`
}

type GSTInfoRequest struct {
	RegisteredName string `json:"registeredName"`
	GSTNumber      string `json:"gstNumber"`
	Email          string `json:"email,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	Address        string `json:"address,omitempty"`
}

type HoldBookingRequest struct {
	BookingID    string              `json:"bookingId" binding:"required"`
	Travellers   []TravellerRequest  `json:"travellers" binding:"required,min=1"`
	ContactInfo  ContactInfoRequest  `json:"contactInfo" binding:"required"`
	DeliveryInfo DeliveryInfoRequest `json:"deliveryInfo"`
	GSTInfo      *GSTInfoRequest     `json:"gstInfo,omitempty"`
}

func (r HoldBookingRequest) ToCommand() commands.HoldRequest {
	travellers := make([]booking.Traveller, 0, len(r.Travellers))
	for _, t := range r.Travellers {
		travellers = append(travellers, booking.Traveller{
			Title:         t.Title,
			Type:          booking.PassengerType(t.Type),
			FirstName:     t.FirstName,
			LastName:      t.LastName,
			DateOfBirth:   t.DateOfBirth,
			PassportNo:    t.PassportNo,
			PassportExp:   t.PassportExp,
			PassportNat:   t.PassportNat,
			PassportIssue: t.PassportIssue,
			DocumentID:    t.DocumentID,
		})
	}

	var gst *booking.GSTInfo
	if r.GSTInfo != nil {
		gst = &booking.GSTInfo{
			RegisteredName: r.GSTInfo.RegisteredName,
			GSTNumber:      r.GSTInfo.GSTNumber,
			Email:          r.GSTInfo.Email,
			Mobile:         r.GSTInfo.Mobile,
			Address:        r.GSTInfo.Address,
		}
	}

	return commands.HoldRequest{
		BookingID:  r.BookingID,
		Travellers: travellers,
		ContactInfo: booking.ContactInfo{
			Emails:   r.ContactInfo.Emails,
			Contacts: r.ContactInfo.Contacts,
			ECN:      r.ContactInfo.ECN,
		},
		DeliveryInfo: booking.DeliveryInfo{
			Emails:   r.DeliveryInfo.Emails,
			Contacts: r.DeliveryInfo.Contacts,
		},
		GSTInfo: gst,
	}
}

type SeatSelectionRequest struct {
	Selections []SeatSelectionItem `json:"selections"`
}

type SeatSelectionItem struct {
	TravellerIndex int    `json:"travellerIndex"`
	SegmentID      string `json:"segmentId" binding:"required"`
	SeatCode       string `json:"seatCode" binding:"required"`
}

func (r SeatSelectionRequest) ToCommand() []commands.SeatSelection {
	selections := make([]commands.SeatSelection, 0, len(r.Selections))
	for _, s := range r.Selections {
		selections = append(selections, commands.SeatSelection{
			TravellerIndex: s.TravellerIndex,
			SegmentID:      s.SegmentID,
			SeatCode:       s.SeatCode,
		})
	}
	return selections
}

type AmendmentTripRequest struct {
	Src           string   `json:"src" binding:"required"`
	Dest          string   `json:"dest" binding:"required"`
	DepartureDate string   `json:"departureDate" binding:"required"`
	Travellers    []string `json:"travellers,omitempty"`
}

type CancellationChargesRequest struct {
	Trips []AmendmentTripRequest `json:"trips,omitempty"`
}

type CancellationRequest struct {
	Remarks          string                 `json:"remarks"`
	Trips            []AmendmentTripRequest `json:"trips,omitempty"`
	RefundableAmount int64                  `json:"refundableAmount" binding:"required"`
}

type ReleasePNRRequest struct {
	PNRs []string `json:"pnrs" binding:"required,min=1"`
}

func toAmendmentTrips(trips []AmendmentTripRequest) []supplier.AmendmentTrip {
	out := make([]supplier.AmendmentTrip, 0, len(trips))
	for _, t := range trips {
		out = append(out, supplier.AmendmentTrip{
			Src:           t.Src,
			Dest:          t.Dest,
			DepartureDate: t.DepartureDate,
			Travellers:    t.Travellers,
		})
	}
	return out
}

func (r CancellationChargesRequest) ToTrips() []supplier.AmendmentTrip {
	return toAmendmentTrips(r.Trips)
}

func (r CancellationRequest) ToCommand(bookingID string) commands.CancellationRequest {
	return commands.CancellationRequest{
		BookingID:        bookingID,
		Remarks:          r.Remarks,
		Trips:            toAmendmentTrips(r.Trips),
		RefundableAmount: r.RefundableAmount,
	}
}
