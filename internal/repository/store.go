package repository

import (
	"context"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// RouteStore reads the route catalogue.
type RouteStore interface {
	// ListRoutes returns routes in catalogue order that pass the filter.
	// The result is never nil.
	ListRoutes(ctx context.Context, f model.RouteFilter) ([]model.Route, error)
	GetRoute(ctx context.Context, id int) (model.Route, error)
}

// CityStore reads the fixed city list.
type CityStore interface {
	ListCities(ctx context.Context) ([]string, error)
}

// UserStore holds registered users keyed by email.
type UserStore interface {
	FindUser(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, u model.User) error
}

// BookingStore creates and reads bookings.
type BookingStore interface {
	// CreateBooking checks the route's seats and, when enough remain,
	// decrements them and records the booking as one atomic step per
	// route.  It returns ErrRouteNotFound or ErrInsufficientSeats on
	// failure, leaving the route unchanged.
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
	GetBooking(ctx context.Context, id int) (model.Booking, error)
}

// Store bundles everything the HTTP layer needs.
type Store interface {
	RouteStore
	CityStore
	UserStore
	BookingStore
}
