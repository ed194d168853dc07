// Package queue carries booking confirmations over RabbitMQ: the event
// payload, a publisher used by the booking handler and a consumer that
// appends each confirmation to a log file.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// BookingQueue is the durable queue confirmations travel on.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published once a booking is stored.  It holds
// enough of the booking for a consumer to log or notify without reading
// the store.
type BookingConfirmedEvent struct {
	BookingID     int      `json:"booking_id"`
	RouteID       int      `json:"route_id"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	DepartureTime string   `json:"departure_time"`
	BusType       string   `json:"bus_type"`
	Passengers    []string `json:"passengers"`
	ContactEmail  string   `json:"contact_email"`
	TotalAmount   int      `json:"total_amount"`
	BookedAt      string   `json:"booked_at"`
}

// NewBookingConfirmedEvent builds the event for b.  The contact email is
// the first passenger's.
func NewBookingConfirmedEvent(b model.Booking) BookingConfirmedEvent {
	names := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		names = append(names, strings.TrimSpace(p.FirstName+" "+p.LastName))
	}
	ev := BookingConfirmedEvent{
		BookingID:     b.ID,
		RouteID:       b.RouteID,
		From:          b.Route.From,
		To:            b.Route.To,
		DepartureTime: b.Route.DepartureTime,
		BusType:       string(b.Route.BusType),
		Passengers:    names,
		TotalAmount:   b.TotalAmount,
		BookedAt:      b.BookingDate,
	}
	if len(b.Passengers) > 0 {
		ev.ContactEmail = b.Passengers[0].Email
	}
	if ev.BookedAt == "" {
		ev.BookedAt = model.FormatBookingDate(time.Now())
	}
	return ev
}

// LogLine renders ev as one line of booking.log, newline included.
func (ev BookingConfirmedEvent) LogLine() string {
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | route_id=%d | route=\"%s -> %s\" | departs=%q | bus=%s | passengers=[%s] | contact=%s | total=%d\n",
		ev.BookedAt, ev.BookingID, ev.RouteID, ev.From, ev.To, ev.DepartureTime, ev.BusType,
		strings.Join(ev.Passengers, ","), ev.ContactEmail, ev.TotalAmount)
}
