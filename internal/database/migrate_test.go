package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-ticket-booking/internal/seed"
)

func TestMigrateCreatesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"routes", "cities", "users", "bookings"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInsertsEveryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d := seed.Default()
	mock.ExpectBegin()
	for range d.Routes {
		mock.ExpectExec("INSERT IGNORE INTO routes").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for range d.Cities {
		mock.ExpectExec("INSERT IGNORE INTO cities").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT IGNORE INTO users").
		WithArgs("demo@busticket.com", "demo123", "Demo User").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Seed(context.Background(), db, d))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO routes").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err = Seed(context.Background(), db, seed.Default())
	assert.ErrorContains(t, err, "seed route 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersEmailComparesExactly(t *testing.T) {
	var users string
	for _, stmt := range schema {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS users") {
			users = stmt
		}
	}
	require.NotEmpty(t, users)
	assert.Contains(t, users, "email VARCHAR(255) COLLATE utf8mb4_bin PRIMARY KEY")
}

func TestBookingTotalFitsInt64(t *testing.T) {
	var bookings string
	for _, stmt := range schema {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS bookings") {
			bookings = stmt
		}
	}
	assert.Contains(t, bookings, "total_amount BIGINT NOT NULL")
}
