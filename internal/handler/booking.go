package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/queue"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
)

const publishTimeout = 10 * time.Second

// BookingHandler creates and reads bookings and announces confirmations.
type BookingHandler struct {
	Bookings repository.BookingStore
	Events   queue.Publisher
	Log      *slog.Logger
}

func NewBookingHandler(bookings repository.BookingStore, events queue.Publisher, log *slog.Logger) *BookingHandler {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &BookingHandler{Bookings: bookings, Events: events, Log: log}
}

type bookReq struct {
	RouteID     FlexInt           `json:"routeId"`
	Passengers  []model.Passenger `json:"passengers"`
	TotalAmount Amount            `json:"totalAmount"`
}

type bookResp struct {
	Success   bool   `json:"success"`
	BookingID int    `json:"bookingId"`
	Message   string `json:"message"`
}

// Book handles POST /api/book.  totalAmount is stored as sent.  Passenger
// fields are not checked here; the booking form requires them.
func (h *BookingHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if !req.RouteID.Valid {
		return errorJSON(c, http.StatusNotFound, "Route not found")
	}
	if len(req.Passengers) == 0 {
		return errorJSON(c, http.StatusBadRequest, "At least one passenger is required")
	}

	b, err := h.Bookings.CreateBooking(c.Request().Context(), model.BookingRequest{
		RouteID:     req.RouteID.Value,
		Passengers:  req.Passengers,
		TotalAmount: int(req.TotalAmount),
	})
	switch {
	case errors.Is(err, repository.ErrRouteNotFound):
		return errorJSON(c, http.StatusNotFound, "Route not found")
	case errors.Is(err, repository.ErrInsufficientSeats):
		return errorJSON(c, http.StatusBadRequest, "Not enough seats available")
	case err != nil:
		return internalError(c, h.Log, "create booking", err)
	}

	h.announce(c.Request().Context(), b)
	return c.JSON(http.StatusOK, bookResp{
		Success:   true,
		BookingID: b.ID,
		Message:   "Booking confirmed successfully!",
	})
}

// announce publishes the confirmation in the background.  The booking is
// already stored, so a broker failure is only logged.
func (h *BookingHandler) announce(ctx context.Context, b model.Booking) {
	ev := queue.NewBookingConfirmedEvent(b)
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := h.Events.PublishBookingConfirmed(ctx, ev); err != nil && h.Log != nil {
			h.Log.Warn("booking confirmation not published", "booking_id", ev.BookingID, "err", err)
		}
	}()
}

// GetBooking handles GET /api/booking/:id.  An id that does not parse
// as an integer cannot match a booking and gets the same 404.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := parseLeadingInt(c.Param("id"))
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Booking not found")
	}
	b, err := h.Bookings.GetBooking(c.Request().Context(), id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return errorJSON(c, http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return internalError(c, h.Log, "get booking", err)
	}
	return c.JSON(http.StatusOK, b)
}
