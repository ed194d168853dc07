package model

import "strings"

// BusType classifies the coach running a route.  Only the three values
// below appear in the seed data; clients fall back to Standard styling
// for anything else.
type BusType string

const (
	BusTypeExpress  BusType = "Express"
	BusTypePremium  BusType = "Premium"
	BusTypeStandard BusType = "Standard"
)

// Valid reports whether t is one of the known bus types.
func (t BusType) Valid() bool {
	switch t {
	case BusTypeExpress, BusTypePremium, BusTypeStandard:
		return true
	}
	return false
}

// Route is a scheduled bus trip between two cities.  Times and duration
// are display strings ("08:00 AM", "12h"); only AvailableSeats changes at
// runtime, and only through a successful booking.
//
// Fields:
//
//	ID             – unique route identifier.
//	From, To       – origin and destination city names.
//	DepartureTime  – departure, as shown to the user.
//	ArrivalTime    – arrival, as shown to the user.
//	Duration       – trip length, as shown to the user.
//	Price          – fare per passenger in whole currency units.
//	AvailableSeats – seats left; never negative.
//	BusType        – Express, Premium or Standard.
type Route struct {
	ID             int     `json:"id"             yaml:"id"`
	From           string  `json:"from"           yaml:"from"`
	To             string  `json:"to"             yaml:"to"`
	DepartureTime  string  `json:"departureTime"  yaml:"departureTime"`
	ArrivalTime    string  `json:"arrivalTime"    yaml:"arrivalTime"`
	Price          int     `json:"price"          yaml:"price"`
	AvailableSeats int     `json:"availableSeats" yaml:"availableSeats"`
	BusType        BusType `json:"busType"        yaml:"busType"`
	Duration       string  `json:"duration"       yaml:"duration"`
}

// RouteFilter narrows a route listing.  From and To match as
// case-insensitive substrings and are ANDed when both are set.  Date is
// accepted from clients but not applied to the result.
type RouteFilter struct {
	From string
	To   string
	Date string
}

// Matches reports whether r passes the From/To parts of the filter.
func (f RouteFilter) Matches(r Route) bool {
	if f.From != "" && !strings.Contains(strings.ToLower(r.From), strings.ToLower(f.From)) {
		return false
	}
	if f.To != "" && !strings.Contains(strings.ToLower(r.To), strings.ToLower(f.To)) {
		return false
	}
	return true
}
