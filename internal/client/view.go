package client

import (
	"fmt"
	"strings"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// SeatClass is the availability tier of a route card.
func SeatClass(seats int) string {
	switch {
	case seats == 0:
		return "seats-full"
	case seats <= 5:
		return "seats-low"
	default:
		return "seats-available"
	}
}

// BusTypeClass maps a bus type to its badge style; unknown types get the
// standard badge.
func BusTypeClass(busType string) string {
	switch strings.ToLower(busType) {
	case "express":
		return "bus-type-express"
	case "premium":
		return "bus-type-premium"
	default:
		return "bus-type-standard"
	}
}

// TotalAmount is the fare for count passengers.
func TotalAmount(price, count int) int { return price * count }

// PassengerLabel renders "1 Passenger", "3 Passengers".
func PassengerLabel(count int) string {
	if count > 1 {
		return fmt.Sprintf("%d Passengers", count)
	}
	return fmt.Sprintf("%d Passenger", count)
}

// RouteCard is a route with its display decorations.
type RouteCard struct {
	model.Route
	SeatClass    string
	BusTypeClass string
	SeatsLabel   string
}

func NewRouteCard(r model.Route) RouteCard {
	return RouteCard{
		Route:        r,
		SeatClass:    SeatClass(r.AvailableSeats),
		BusTypeClass: BusTypeClass(string(r.BusType)),
		SeatsLabel:   fmt.Sprintf("%d seats available", r.AvailableSeats),
	}
}

// NoRoutesMessage is shown instead of cards when a search matches nothing.
const NoRoutesMessage = "No routes found for your search criteria. Please try different cities or dates."
