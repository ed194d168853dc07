package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
	"github.com/iliyamo/bus-ticket-booking/internal/queue"
	"github.com/iliyamo/bus-ticket-booking/internal/repository"
	"github.com/iliyamo/bus-ticket-booking/internal/seed"
	"github.com/iliyamo/bus-ticket-booking/internal/utils"
)

func TestFlexInt(t *testing.T) {
	cases := []struct {
		in    string
		want  int
		valid bool
	}{
		{`1`, 1, true},
		{`"2"`, 2, true},
		{`" 3 "`, 3, true},
		{`"4abc"`, 4, true},
		{`"-5"`, -5, true},
		{`"0x2"`, 2, true},
		{`"0X1f"`, 31, true},
		{`"-0x10"`, -16, true},
		{`"0x"`, 0, false},
		{`6.9`, 6, true},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
		{`{}`, 0, false},
	}
	for _, tc := range cases {
		var f FlexInt
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.Equal(t, tc.valid, f.Valid, tc.in)
		assert.Equal(t, tc.want, f.Value, tc.in)
	}
}

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`5000`, 5000},
		{`"5000"`, 5000},
		{`3000000000`, 3000000000},
		{`1e3`, 1000},
		{`2500.0`, 2500},
		{`null`, 0},
	}
	for _, tc := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(tc.in), &a), tc.in)
		assert.Equal(t, tc.want, int(a), tc.in)
	}
	for _, in := range []string{`12.5`, `1e300`, `"abc"`, `true`} {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(in), &a), in)
	}
}

type recordingPublisher struct {
	events chan queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.events <- ev
	return p.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBookPublishesConfirmation(t *testing.T) {
	pub := &recordingPublisher{events: make(chan queue.BookingConfirmedEvent, 1), err: errors.New("broker down")}
	h := NewBookingHandler(repository.NewMemoryStore(seed.Default()), pub, discard())

	body := `{"routeId":4,"passengers":[{"firstName":"Asha","lastName":"Rao","email":"a@x.io","phone":"1"}],"totalAmount":1800}`
	req := httptest.NewRequest(http.MethodPost, "/api/book", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Book(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case ev := <-pub.events:
		assert.Equal(t, 1, ev.BookingID)
		assert.Equal(t, 4, ev.RouteID)
		assert.Equal(t, "Chennai", ev.From)
		assert.Equal(t, []string{"Asha Rao"}, ev.Passengers)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation not published")
	}
}

type failingStore struct{ repository.Store }

func (failingStore) ListCities(context.Context) ([]string, error) { return nil, errors.New("db gone") }
func (failingStore) GetBooking(context.Context, int) (model.Booking, error) {
	return model.Booking{}, errors.New("db gone")
}

func TestStoreFailuresAreHidden(t *testing.T) {
	e := echo.New()
	catalog := NewCatalogHandler(failingStore{}, failingStore{}, discard())
	rec := httptest.NewRecorder()
	require.NoError(t, catalog.ListCities(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/cities", nil), rec)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	bookings := NewBookingHandler(failingStore{}, nil, discard())
	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/booking/1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, bookings.GetBooking(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegisterHashesPassword(t *testing.T) {
	store := repository.NewMemoryStore(seed.Default())
	h := NewAuthHandler(store, utils.BcryptPasswords{Cost: 4}, discard())

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"name":"Asha","email":"asha@example.com","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(echo.New().NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	u, err := store.FindUser(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", u.Password)
	assert.True(t, utils.BcryptPasswords{}.Verify(u.Password, "pw"))
}

func TestRegisterAcceptsForm(t *testing.T) {
	store := repository.NewMemoryStore(seed.Default())
	h := NewAuthHandler(store, nil, discard())

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader("name=Asha&email=asha%40example.com&password=pw"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, store.UserCount())
}
