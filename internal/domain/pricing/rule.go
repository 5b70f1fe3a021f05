package pricing

import (
	"github.com/google/uuid"
)

type ServiceType string

const (
	ServiceFlight ServiceType = "flight"
	ServiceHotel  ServiceType = "hotel"
)

type MarkupType string

const (
	MarkupFlat    MarkupType = "flat"
	MarkupPercent MarkupType = "percent"
)

type Route struct {
	From string
	To   string
}

// Rule is static pricing configuration. The booking flow consumes rules
// read-only; managing them is an admin concern outside this service.
type Rule struct {
	ID          uuid.UUID
	Name        string
	ServiceType ServiceType
	MarkupType  MarkupType
	MarkupValue float64
	PlatformFee float64

	// Flight scoping. Empty slices match everything.
	Airlines []string
	Routes   []Route

	// Hotel scoping.
	HotelIDs  []string
	Cities    []string
	Countries []string
	Ratings   []int

	Region     string
	MinFare    float64
	MaxFare    float64
	Precedence int
	IsActive   bool
}

// Context carries the attributes of the priced offer a rule may scope on.
type Context struct {
	ServiceType ServiceType

	Airline string
	From    string
	To      string

	HotelID string
	City    string
	Country string
	Rating  int
}

func (r Rule) matches(baseFare float64, ctx Context) bool {
	if r.MaxFare > 0 && (baseFare < r.MinFare || baseFare > r.MaxFare) {
		return false
	}
	if baseFare < r.MinFare {
		return false
	}

	switch ctx.ServiceType {
	case ServiceFlight:
		if len(r.Airlines) > 0 && !containsString(r.Airlines, ctx.Airline) {
			return false
		}
		if len(r.Routes) > 0 && !matchesRoute(r.Routes, ctx.From, ctx.To) {
			return false
		}
	case ServiceHotel:
		if len(r.HotelIDs) > 0 && !containsString(r.HotelIDs, ctx.HotelID) {
			return false
		}
		if len(r.Cities) > 0 && !containsString(r.Cities, ctx.City) {
			return false
		}
		if len(r.Countries) > 0 && !containsString(r.Countries, ctx.Country) {
			return false
		}
		if len(r.Ratings) > 0 && !containsInt(r.Ratings, ctx.Rating) {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func matchesRoute(routes []Route, from, to string) bool {
	for _, r := range routes {
		if r.From == from && r.To == to {
			return true
		}
	}
	return false
}
