package router

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-ticket-booking/internal/config"
	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/seed"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
	"github.com/iliyamo/bus-ticket-booking/web"
)

type testApp struct {
	t     *testing.T
	srv   http.Handler
	store *repository.MemoryStore
}

func newTestApp(t *testing.T, auth config.AuthConfig) *testApp {
	t.Helper()
	if auth.Mode == "" {
		auth.Mode = config.AuthModeHeader
	}
	store := repository.NewMemoryStore(seed.Default())
	e := New(Deps{
		Config:    config.Config{Auth: auth},
		Store:     store,
		Passwords: utils.PlainPasswords{},
		Pages:     web.FS,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testApp{t: t, srv: e, store: store}
}

// do sends body as JSON; headers are name/value pairs.
func (a *testApp) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) authed(method, path, body string) *httptest.ResponseRecorder {
	return a.do(method, path, body, "x-auth-status", "true")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func bookBody(routeID any, n, total int) string {
	ps := make([]model.Passenger, n)
	for i := range ps {
		ps[i] = model.Passenger{FirstName: "P", LastName: fmt.Sprint(i), Email: "p@example.com", Phone: "1"}
	}
	raw, _ := json.Marshal(map[string]any{"routeId": routeID, "passengers": ps, "totalAmount": total})
	return string(raw)
}

func TestEndToEndBooking(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	rec := a.do(http.MethodPost, "/api/login", `{"email":"demo@busticket.com","password":"demo123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Login successful","user":{"email":"demo@busticket.com","name":"Demo User"}}`, rec.Body.String())

	rec = a.authed(http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Route](t, rec), 6)

	rec = a.authed(http.MethodPost, "/api/book", bookBody(1, 2, 5000))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bookingId":1,"message":"Booking confirmed successfully!"}`, rec.Body.String())

	rec = a.authed(http.MethodGet, "/api/routes?from=Mumbai", "")
	routes := decode[[]model.Route](t, rec)
	require.Len(t, routes, 1)
	assert.Equal(t, 23, routes[0].AvailableSeats)

	rec = a.authed(http.MethodGet, "/api/booking/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[model.Booking](t, rec)
	assert.Equal(t, "confirmed", b.Status)
	assert.Equal(t, 1, b.RouteID)
	assert.Equal(t, 5000, b.TotalAmount)
	assert.Len(t, b.Passengers, 2)
	assert.Equal(t, "Mumbai", b.Route.From)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, b.BookingDate)
}

func TestGateRejectsWithoutFlag(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/cities", ""},
		{http.MethodGet, "/api/routes", ""},
		{http.MethodPost, "/api/book", bookBody(1, 1, 2500)},
		{http.MethodGet, "/api/booking/1", ""},
		{http.MethodGet, "/booking-confirmation/1", ""},
	} {
		rec := a.do(tc.method, tc.path, tc.body, "x-auth-status", "false")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
	}
	route, err := a.store.GetRoute(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, 25, route.AvailableSeats)
}

func TestLogin(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	for _, body := range []string{
		`{"email":"demo@busticket.com","password":"wrong"}`,
		`{"email":"nobody@busticket.com","password":"demo123"}`,
		`{}`,
	} {
		rec := a.do(http.MethodPost, "/api/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid email or password"}`, rec.Body.String())
	}
	rec := a.do(http.MethodPost, "/api/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestRegister(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	rec := a.do(http.MethodPost, "/api/register", `{"name":"Asha","email":"asha@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"All fields are required"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/register", `{"name":"Asha","email":"asha@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Registration successful","user":{"email":"asha@example.com","name":"Asha"}}`, rec.Body.String())
	assert.Equal(t, 2, a.store.UserCount())

	rec = a.do(http.MethodPost, "/api/register", `{"name":"Other","email":"asha@example.com","password":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"User already exists"}`, rec.Body.String())
	assert.Equal(t, 2, a.store.UserCount())

	rec = a.do(http.MethodPost, "/api/login", `{"email":"asha@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	rec := a.do(http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Logout successful"}`, rec.Body.String())
}

func TestCitiesAndRouteFilters(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	cities := decode[[]string](t, a.authed(http.MethodGet, "/api/cities", ""))
	assert.Len(t, cities, 10)
	assert.Equal(t, "Mumbai", cities[0])

	routes := decode[[]model.Route](t, a.authed(http.MethodGet, "/api/routes?from=mumbai&date=2030-01-01", ""))
	require.Len(t, routes, 1)
	assert.Equal(t, 1, routes[0].ID)

	routes = decode[[]model.Route](t, a.authed(http.MethodGet, "/api/routes?from=Delhi&to=Chennai", ""))
	assert.Empty(t, routes)
	assert.Equal(t, "[]\n", a.authed(http.MethodGet, "/api/routes?from=Nowhere", "").Body.String())
}

func TestBookFailures(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	rec := a.authed(http.MethodPost, "/api/book", bookBody(999, 1, 100))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())

	rec = a.authed(http.MethodPost, "/api/book", bookBody("abc", 1, 100))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.authed(http.MethodPost, "/api/book", bookBody(2, 19, 100))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Not enough seats available"}`, rec.Body.String())

	rec = a.authed(http.MethodPost, "/api/book", `{"routeId":2,"passengers":[],"totalAmount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"At least one passenger is required"}`, rec.Body.String())

	rec = a.authed(http.MethodPost, "/api/book", `{"routeId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	route, err := a.store.GetRoute(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, 18, route.AvailableSeats)

	rec = a.authed(http.MethodGet, "/api/booking/1", "")
	assert.JSONEq(t, `{"error":"Booking not found"}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, a.authed(http.MethodGet, "/api/booking/xyz", "").Code)
}

func TestBookAcceptsStringRouteID(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	rec := a.authed(http.MethodPost, "/api/book", bookBody("3", 30, 36000))
	require.Equal(t, http.StatusOK, rec.Code)

	route, err := a.store.GetRoute(t.Context(), 3)
	require.NoError(t, err)
	assert.Zero(t, route.AvailableSeats)

	rec = a.authed(http.MethodPost, "/api/book", bookBody(3, 1, 1200))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookKeepsTotalAmountAsSent(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	rec := a.authed(http.MethodPost, "/api/book", bookBody("0x2", 1, 3000000000))
	require.Equal(t, http.StatusOK, rec.Code)

	b := decode[model.Booking](t, a.authed(http.MethodGet, "/api/booking/1", ""))
	assert.Equal(t, 2, b.RouteID)
	assert.Equal(t, 3000000000, b.TotalAmount)

	rec = a.authed(http.MethodPost, "/api/book",
		`{"routeId":2,"passengers":[{"firstName":"A","lastName":"B","email":"a@b.c","phone":"1"}],"totalAmount":12.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := a.authed(http.MethodPost, "/api/book", bookBody(2, 4, 14000))
			if rec.Code == http.StatusOK {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	route, err := a.store.GetRoute(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, ok)
	assert.Equal(t, 2, route.AvailableSeats)
}

func TestJWTMode(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "s3cret", AccessTTLMin: 5})

	rec := a.do(http.MethodPost, "/api/login", `{"email":"demo@busticket.com","password":"demo123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusUnauthorized, a.authed(http.MethodGet, "/api/cities", "").Code)
	rec = a.do(http.MethodGet, "/api/cities", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPagesAndHealth(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})

	rec := a.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	for path, marker := range map[string]string{
		"/":                     `data-page="dashboard"`,
		"/dashboard":            `data-page="dashboard"`,
		"/login":                `data-page="login"`,
		"/register":             `data-page="register"`,
		"/booking-details":      `data-page="booking-details"`,
		"/booking-details.html": `data-page="booking-details"`,
	} {
		rec := a.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), marker, path)
	}

	rec = a.authed(http.MethodGet, "/booking-confirmation/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-page="confirmation"`)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nope.html", "").Code)
}

func TestRequestIDHeader(t *testing.T) {
	a := newTestApp(t, config.AuthConfig{})
	rec := a.do(http.MethodGet, "/healthz", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
