package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-ticket-booking/internal/client"
	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/router"
	"github.com/iliyamo/bus-ticket-booking/internal/seed"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
)

func TestParsePassenger(t *testing.T) {
	p, err := parsePassenger(" Asha , Rao,asha@example.com, 9000000000")
	require.NoError(t, err)
	assert.Equal(t, model.Passenger{FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9000000000"}, p)

	_, err = parsePassenger("Asha,Rao")
	assert.Error(t, err)
}

func TestSessionAcrossInvocations(t *testing.T) {
	store := repository.NewMemoryStore(seed.Default())
	srv := httptest.NewServer(router.New(router.Deps{
		Config:    config.Config{Auth: config.AuthConfig{Mode: config.AuthModeHeader}},
		Store:     store,
		Passwords: utils.PlainPasswords{},
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	defer srv.Close()

	state := filepath.Join(t.TempDir(), "state.json")
	base := []string{"--server", srv.URL, "--state", state}
	cli := func(args ...string) error { return run(append(append([]string{}, base...), args...)) }

	stdout := os.Stdout
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	os.Stdout = devnull
	defer func() { os.Stdout = stdout; devnull.Close() }()

	err = cli("routes")
	require.Error(t, err)
	var shown reportedError
	assert.False(t, errors.As(err, &shown), "login hint is printed by main")

	err = cli("login", "--email", "demo@busticket.com", "--password", "wrong")
	require.Error(t, err)
	assert.True(t, errors.As(err, &shown), "notification already carried the message")
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))

	require.NoError(t, cli("login", "--email", "demo@busticket.com", "--password", "demo123"))
	require.NoError(t, cli("routes", "--from", "Pune"))
	require.NoError(t, cli("book", "--route", "6",
		"--passenger", "Asha,Rao,asha@example.com,1",
		"--passenger", "Ravi,Rao,ravi@example.com,2"))
	require.NoError(t, cli("booking"))

	r, err := store.GetRoute(t.Context(), 6)
	require.NoError(t, err)
	assert.Equal(t, 30, r.AvailableSeats)

	id, ok := client.NewFileStorage(state).Get(client.KeyCurrentID)
	require.True(t, ok)
	assert.Equal(t, "1", id)

	require.NoError(t, cli("logout"))
	assert.Error(t, cli("cities"))
	assert.Error(t, cli("nope"))
}

func TestRenderCard(t *testing.T) {
	out := renderCard(client.NewRouteCard(model.Route{
		ID: 1, From: "Mumbai", To: "Delhi", Price: 2500, AvailableSeats: 0, BusType: model.BusTypeExpress,
	}))
	assert.Contains(t, out, "Mumbai → Delhi")
	assert.Contains(t, out, "0 seats available")
}
