package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/seed"
)

// MemoryStore keeps the whole data set in process memory.  Nothing is
// persisted; a restart returns to the seed.
//
// mu guards every collection.  Booking creation additionally holds the
// route's own mutex for the whole check-then-decrement sequence so two
// bookings on the same route can never both pass the seat check.
type MemoryStore struct {
	mu            sync.RWMutex
	routes        []model.Route
	routeIndex    map[int]int
	routeLocks    map[int]*sync.Mutex // fixed after construction
	cities        []string
	users         []model.User
	bookings      []model.Booking
	nextBookingID int
	now           func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store from seed data.  The seed slices are
// copied so callers may reuse them.
func NewMemoryStore(d seed.Data) *MemoryStore {
	s := &MemoryStore{
		routes:        append([]model.Route(nil), d.Routes...),
		routeIndex:    make(map[int]int, len(d.Routes)),
		routeLocks:    make(map[int]*sync.Mutex, len(d.Routes)),
		cities:        append([]string(nil), d.Cities...),
		users:         append([]model.User(nil), d.Users...),
		nextBookingID: 1,
		now:           time.Now,
	}
	for i, r := range s.routes {
		s.routeIndex[r.ID] = i
		s.routeLocks[r.ID] = &sync.Mutex{}
	}
	return s
}

// SetClock replaces the time source used for booking dates.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) ListRoutes(_ context.Context, f model.RouteFilter) ([]model.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetRoute(_ context.Context, id int) (model.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.routeIndex[id]
	if !ok {
		return model.Route{}, ErrRouteNotFound
	}
	return s.routes[i], nil
}

func (s *MemoryStore) ListCities(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]string, 0, len(s.cities)), s.cities...), nil
}

func (s *MemoryStore) FindUser(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	s.users = append(s.users, u)
	return nil
}

// UserCount reports how many users are registered.
func (s *MemoryStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryStore) CreateBooking(_ context.Context, req model.BookingRequest) (model.Booking, error) {
	lock, ok := s.routeLocks[req.RouteID]
	if !ok {
		return model.Booking{}, ErrRouteNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	i := s.routeIndex[req.RouteID]
	seats := s.routes[i].AvailableSeats
	s.mu.RUnlock()
	if len(req.Passengers) > seats {
		return model.Booking{}, ErrInsufficientSeats
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[i].AvailableSeats -= len(req.Passengers)
	b := model.Booking{
		ID:          s.nextBookingID,
		RouteID:     req.RouteID,
		Route:       s.routes[i],
		Passengers:  append([]model.Passenger(nil), req.Passengers...),
		TotalAmount: req.TotalAmount,
		BookingDate: model.FormatBookingDate(s.now()),
		Status:      model.BookingStatusConfirmed,
	}
	s.nextBookingID++
	s.bookings = append(s.bookings, b)
	return copyBooking(b), nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return copyBooking(b), nil
		}
	}
	return model.Booking{}, ErrBookingNotFound
}

func copyBooking(b model.Booking) model.Booking {
	b.Passengers = append([]model.Passenger(nil), b.Passengers...)
	return b
}
