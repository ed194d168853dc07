package model

import "time"

// BookingStatusConfirmed is the only status a booking ever has.
const BookingStatusConfirmed = "confirmed"

// BookingDateLayout renders timestamps the way browsers print
// Date.toISOString: UTC with millisecond precision.
const BookingDateLayout = "2006-01-02T15:04:05.000Z"

// Passenger is one traveller on a booking.  All four fields are required
// by the booking form; no further validation is applied.
type Passenger struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Complete reports whether every field is filled in.
func (p Passenger) Complete() bool {
	return p.FirstName != "" && p.LastName != "" && p.Email != "" && p.Phone != ""
}

// Booking is a confirmed reservation of seats on a route.  Route holds a
// snapshot of the route taken when the booking was stored.  Bookings are
// never modified or deleted.
type Booking struct {
	ID          int         `json:"id"`
	RouteID     int         `json:"routeId"`
	Route       Route       `json:"route"`
	Passengers  []Passenger `json:"passengers"`
	TotalAmount int         `json:"totalAmount"`
	BookingDate string      `json:"bookingDate"`
	Status      string      `json:"status"`
}

// BookingRequest carries what a client submits to create a booking.
// TotalAmount is taken as sent and not recomputed from the route price.
type BookingRequest struct {
	RouteID     int
	Passengers  []Passenger
	TotalAmount int
}

// FormatBookingDate renders t in BookingDateLayout.
func FormatBookingDate(t time.Time) string {
	return t.UTC().Format(BookingDateLayout)
}
