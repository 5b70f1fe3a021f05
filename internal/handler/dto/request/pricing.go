package request

import (
	"farelock/internal/domain/pricing"
	"farelock/internal/usecase/commands"
)

type LockPriceItem struct {
	PriceID      string  `json:"priceId" binding:"required"`
	TripType     string  `json:"tripType"`
	RouteIndex   int     `json:"routeIndex"`
	SupplierFare float64 `json:"supplierFare" binding:"required"`

	Airline string `json:"airline,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`

	HotelID string `json:"hotelId,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Rating  int    `json:"rating,omitempty"`
}

type LockPriceRequest struct {
	SearchSessionID string          `json:"searchSessionId" binding:"required"`
	ServiceType     string          `json:"serviceType" binding:"required"`
	Region          string          `json:"region"`
	Items           []LockPriceItem `json:"items" binding:"required,min=1"`
}

func (r LockPriceRequest) ToCommand() commands.LockPriceRequest {
	serviceType := pricing.ServiceType(r.ServiceType)
	items := make([]commands.PriceItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, commands.PriceItem{
			PriceID:      item.PriceID,
			TripType:     item.TripType,
			RouteIndex:   item.RouteIndex,
			SupplierFare: item.SupplierFare,
			Attributes: pricing.Context{
				ServiceType: serviceType,
				Airline:     item.Airline,
				From:        item.From,
				To:          item.To,
				HotelID:     item.HotelID,
				City:        item.City,
				Country:     item.Country,
				Rating:      item.Rating,
			},
		})
	}
	return commands.LockPriceRequest{
		SearchSessionID: r.SearchSessionID,
		ServiceType:     serviceType,
		Region:          r.Region,
		Items:           items,
	}
}
