// Package repository defines the booking store and the error values its
// implementations share.  These sentinel values allow higher layers such
// as handlers to distinguish between failure scenarios without knowing
// which backend is in use.  For example, ErrInsufficientSeats signals
// that a booking asked for more seats than the route has left, while
// ErrEmailExists indicates a registration for an address that is
// already taken.
package repository

import "errors"

// ErrRouteNotFound is returned when no route has the requested id.
// Handlers should translate this into an HTTP 404 response.
var ErrRouteNotFound = errors.New("route not found")

// ErrBookingNotFound is returned when no booking has the requested id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned by FindUser for an unknown email.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering an email that already
// belongs to a user.  Handlers should translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrInsufficientSeats is returned when a booking carries more passengers
// than the route has seats available.  The route is left untouched.
var ErrInsufficientSeats = errors.New("not enough seats available")
