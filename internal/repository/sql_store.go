package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// SQLStore implements Store on MySQL.  Tables are created by
// database.Migrate.  Route snapshots and passenger lists are kept as JSON
// columns on the bookings row.
type SQLStore struct {
	DB  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db, now: time.Now} }

// SetClock replaces the time source used for booking dates.
func (s *SQLStore) SetClock(now func() time.Time) { s.now = now }

const routeColumns = "id, from_city, to_city, departure_time, arrival_time, price, available_seats, bus_type, duration"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (model.Route, error) {
	var r model.Route
	var busType string
	err := row.Scan(&r.ID, &r.From, &r.To, &r.DepartureTime, &r.ArrivalTime,
		&r.Price, &r.AvailableSeats, &busType, &r.Duration)
	r.BusType = model.BusType(busType)
	return r, err
}

// ListRoutes filters in SQL with LIKE on lower-cased columns.  Date is
// ignored, matching the in-memory store.
func (s *SQLStore) ListRoutes(ctx context.Context, f model.RouteFilter) ([]model.Route, error) {
	q := "SELECT " + routeColumns + " FROM routes WHERE 1=1"
	args := []any{}
	if f.From != "" {
		q += " AND LOWER(from_city) LIKE ?"
		args = append(args, "%"+escapeLike(strings.ToLower(f.From))+"%")
	}
	if f.To != "" {
		q += " AND LOWER(to_city) LIKE ?"
		args = append(args, "%"+escapeLike(strings.ToLower(f.To))+"%")
	}
	q += " ORDER BY id"

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()
	out := make([]model.Route, 0)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func (s *SQLStore) GetRoute(ctx context.Context, id int) (model.Route, error) {
	r, err := scanRoute(s.DB.QueryRowContext(ctx,
		"SELECT "+routeColumns+" FROM routes WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Route{}, ErrRouteNotFound
	}
	return r, err
}

func (s *SQLStore) ListCities(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name FROM cities ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindUser(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.DB.QueryRowContext(ctx,
		"SELECT email, password, name FROM users WHERE email = ? LIMIT 1", email).
		Scan(&u.Email, &u.Password, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *SQLStore) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (email, password, name) VALUES (?, ?, ?)",
		u.Email, u.Password, u.Name)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ErrEmailExists
	}
	return err
}

// CreateBooking locks the route row for the duration of the transaction
// so concurrent bookings on the same route queue behind each other.
func (s *SQLStore) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	route, err := scanRoute(tx.QueryRowContext(ctx,
		"SELECT "+routeColumns+" FROM routes WHERE id = ? FOR UPDATE", req.RouteID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrRouteNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("lock route: %w", err)
	}
	n := len(req.Passengers)
	if n > route.AvailableSeats {
		return model.Booking{}, ErrInsufficientSeats
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE routes SET available_seats = available_seats - ? WHERE id = ?", n, route.ID); err != nil {
		return model.Booking{}, fmt.Errorf("decrement seats: %w", err)
	}
	route.AvailableSeats -= n

	b := model.Booking{
		RouteID:     route.ID,
		Route:       route,
		Passengers:  append([]model.Passenger(nil), req.Passengers...),
		TotalAmount: req.TotalAmount,
		BookingDate: model.FormatBookingDate(s.now()),
		Status:      model.BookingStatusConfirmed,
	}
	routeJSON, err := json.Marshal(b.Route)
	if err != nil {
		return model.Booking{}, err
	}
	passengersJSON, err := json.Marshal(b.Passengers)
	if err != nil {
		return model.Booking{}, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (route_id, route_json, passengers_json, total_amount, booking_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.RouteID, routeJSON, passengersJSON, b.TotalAmount, b.BookingDate, b.Status)
	if err != nil {
		return model.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = int(id)

	if err := tx.Commit(); err != nil {
		return model.Booking{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return b, nil
}

func (s *SQLStore) GetBooking(ctx context.Context, id int) (model.Booking, error) {
	var (
		b              model.Booking
		routeJSON      []byte
		passengersJSON []byte
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, route_id, route_json, passengers_json, total_amount, booking_date, status
		 FROM bookings WHERE id = ? LIMIT 1`, id).
		Scan(&b.ID, &b.RouteID, &routeJSON, &passengersJSON, &b.TotalAmount, &b.BookingDate, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	if err := json.Unmarshal(routeJSON, &b.Route); err != nil {
		return model.Booking{}, fmt.Errorf("decode route snapshot: %w", err)
	}
	if err := json.Unmarshal(passengersJSON, &b.Passengers); err != nil {
		return model.Booking{}, fmt.Errorf("decode passengers: %w", err)
	}
	return b, nil
}
