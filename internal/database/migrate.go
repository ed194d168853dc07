package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/bus-ticket-booking/internal/seed"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS routes (
		id INT PRIMARY KEY,
		from_city VARCHAR(100) NOT NULL,
		to_city VARCHAR(100) NOT NULL,
		departure_time VARCHAR(20) NOT NULL,
		arrival_time VARCHAR(20) NOT NULL,
		price INT NOT NULL,
		available_seats INT NOT NULL CHECK (available_seats >= 0),
		bus_type VARCHAR(20) NOT NULL,
		duration VARCHAR(20) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cities (
		position INT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		email VARCHAR(255) COLLATE utf8mb4_bin PRIMARY KEY,
		password VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INT AUTO_INCREMENT PRIMARY KEY,
		route_id INT NOT NULL,
		route_json JSON NOT NULL,
		passengers_json JSON NOT NULL,
		total_amount BIGINT NOT NULL,
		booking_date VARCHAR(32) NOT NULL,
		status VARCHAR(20) NOT NULL,
		KEY idx_route (route_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the SQL store expects.  It is safe to run on
// every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed inserts the seed rows that are not already present.  Existing rows
// win, so seats consumed by earlier bookings are not reset.
func Seed(ctx context.Context, db *sql.DB, d seed.Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, r := range d.Routes {
		if _, err := tx.ExecContext(ctx,
			`INSERT IGNORE INTO routes (id, from_city, to_city, departure_time, arrival_time, price, available_seats, bus_type, duration)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.From, r.To, r.DepartureTime, r.ArrivalTime, r.Price, r.AvailableSeats, string(r.BusType), r.Duration); err != nil {
			return fmt.Errorf("seed route %d: %w", r.ID, err)
		}
	}
	for i, c := range d.Cities {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO cities (position, name) VALUES (?, ?)", i, c); err != nil {
			return fmt.Errorf("seed city %s: %w", c, err)
		}
	}
	for _, u := range d.Users {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO users (email, password, name) VALUES (?, ?, ?)",
			u.Email, u.Password, u.Name); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
