package response

import (
	"time"

	"farelock/internal/domain/pricing"
	"farelock/internal/domain/snapshot"

	"github.com/google/uuid"
)

type SnapshotResponse struct {
	ID              uuid.UUID             `json:"id"`
	SearchSessionID string                `json:"searchSessionId"`
	PriceID         string                `json:"priceId"`
	TripType        string                `json:"tripType,omitempty"`
	RouteIndex      int                   `json:"routeIndex"`
	ServiceType     pricing.ServiceType   `json:"serviceType"`
	SupplierFare    float64               `json:"supplierFare"`
	FinalFare       int64                 `json:"finalFare"`
	MarkupApplied   int64                 `json:"markupApplied"`
	AppliedRules    []pricing.AppliedRule `json:"appliedRules,omitempty"`
	Currency        string                `json:"currency"`
	ExpiresAt       time.Time             `json:"expiresAt"`

	IsReviewed        bool   `json:"isReviewed"`
	ReviewBookingID   string `json:"reviewBookingId,omitempty"`
	ReviewedFinalFare int64  `json:"reviewedFinalFare,omitempty"`
	FareAlert         bool   `json:"fareAlert,omitempty"`

	IsHeld         bool   `json:"isHeld"`
	FinalBookingID string `json:"finalBookingId,omitempty"`
	PNR            string `json:"pnr,omitempty"`
}

func FromSnapshot(s *snapshot.Snapshot) *SnapshotResponse {
	return &SnapshotResponse{
		ID:                s.ID,
		SearchSessionID:   s.SearchSessionID,
		PriceID:           s.PriceID,
		TripType:          s.TripType,
		RouteIndex:        s.RouteIndex,
		ServiceType:       s.ServiceType,
		SupplierFare:      s.SupplierFare,
		FinalFare:         s.FinalFare,
		MarkupApplied:     s.MarkupApplied,
		AppliedRules:      s.AppliedRules,
		Currency:          s.Currency,
		ExpiresAt:         s.ExpiresAt,
		IsReviewed:        s.IsReviewed,
		ReviewBookingID:   s.ReviewBookingID,
		ReviewedFinalFare: s.ReviewedFinalFare,
		FareAlert:         s.FareAlert,
		IsHeld:            s.IsHeld,
		FinalBookingID:    s.FinalBookingID,
		PNR:               s.PNR,
	}
}

func FromSnapshots(snapshots []*snapshot.Snapshot) []*SnapshotResponse {
	out := make([]*SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, FromSnapshot(s))
	}
	return out
}
