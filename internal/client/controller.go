package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// State is where the booking page currently is.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateIdle            State = "idle"
	StateSearching       State = "searching"
	StateRouteSelected   State = "route-selected"
	StateBooking         State = "booking"
	StateConfirmed       State = "confirmed"
)

var (
	// ErrLoginRequired means the local auth flag is missing and the user
	// must go to the login view first.
	ErrLoginRequired        = errors.New("login required")
	ErrUnknownRoute         = errors.New("route is not in the current listing")
	ErrNoRouteSelected      = errors.New("no route selected")
	ErrInvalidPassengerSlot = errors.New("invalid passenger")
	ErrIncompletePassengers = errors.New("every passenger needs first name, last name, email and phone")
	ErrNoCurrentBooking     = errors.New("no booking selected")
)

// BookingSnapshot is the in-progress booking cached for the details view.
// ID starts as a BK-<unix millis> placeholder and becomes the server id
// once the booking is confirmed.
type BookingSnapshot struct {
	ID            string            `json:"id"`
	From          string            `json:"from"`
	To            string            `json:"to"`
	DepartureTime string            `json:"departureTime"`
	ArrivalTime   string            `json:"arrivalTime"`
	Duration      string            `json:"duration"`
	BusType       string            `json:"busType"`
	TravelDate    string            `json:"travelDate"`
	TotalAmount   int               `json:"totalAmount"`
	Passengers    []model.Passenger `json:"passengers"`
}

// Controller is the booking page state.  All user feedback that the page
// would show as a toast goes to Notes.
type Controller struct {
	API     *APIClient
	Storage Storage
	Notes   *Notifier
	Now     func() time.Time

	mu         sync.Mutex
	state      State
	cities     []string
	routes     []model.Route
	filter     model.RouteFilter
	selected   *model.Route
	passengers []model.Passenger
}

func NewController(api *APIClient, storage Storage) *Controller {
	return &Controller{
		API:     api,
		Storage: storage,
		Notes:   NewNotifier(),
		Now:     time.Now,
		state:   StateUnauthenticated,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Cities() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.cities...)
}

func (c *Controller) Routes() []model.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Route(nil), c.routes...)
}

// SelectedRoute returns the route being booked, if any.
func (c *Controller) SelectedRoute() (model.Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return model.Route{}, false
	}
	return *c.selected, true
}

// Authenticated reports the local auth flag.  It only drives navigation;
// the server decides access on its own.
func (c *Controller) Authenticated() bool {
	v, _ := c.Storage.Get(KeyAuthenticated)
	return v == "true"
}

// UserEmail is the stored email, or "User".
func (c *Controller) UserEmail() string {
	if v, ok := c.Storage.Get(KeyUserEmail); ok && v != "" {
		return v
	}
	return "User"
}

// Init prepares the page: without the auth flag it returns
// ErrLoginRequired; otherwise it drops any stale in-progress booking and
// loads the cities and the full route list.
func (c *Controller) Init(ctx context.Context) error {
	if !c.Authenticated() {
		c.setState(StateUnauthenticated)
		return ErrLoginRequired
	}
	if tok, ok := c.Storage.Get(KeyAuthToken); ok {
		c.API.Token = tok
	}
	if err := c.Storage.Remove(KeyCurrentBooking); err != nil {
		return err
	}
	c.mu.Lock()
	c.state = StateIdle
	c.selected, c.passengers = nil, nil
	c.mu.Unlock()

	cities, err := c.API.Cities(ctx)
	if err != nil {
		return fmt.Errorf("load cities: %w", err)
	}
	routes, err := c.API.Routes(ctx, model.RouteFilter{})
	if err != nil {
		return fmt.Errorf("load routes: %w", err)
	}
	c.mu.Lock()
	c.cities, c.routes = cities, routes
	c.mu.Unlock()
	return nil
}

// Login checks credentials with the server and, on success, records the
// auth flag, email and any issued token.
func (c *Controller) Login(ctx context.Context, email, password string) (AuthResult, error) {
	res, err := c.API.Login(ctx, email, password)
	if err != nil {
		c.notifyErr(err, "Login failed. Please try again.")
		return res, err
	}
	if err := c.remember(res); err != nil {
		return res, err
	}
	c.setState(StateIdle)
	return res, nil
}

// Register creates the account.  The user still logs in afterwards.
func (c *Controller) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	res, err := c.API.Register(ctx, name, email, password)
	if err != nil {
		c.notifyErr(err, "Registration failed. Please try again.")
		return res, err
	}
	c.Notes.Notify(NotifyInfo, res.Message)
	return res, nil
}

func (c *Controller) remember(res AuthResult) error {
	if err := c.Storage.Set(KeyAuthenticated, "true"); err != nil {
		return err
	}
	if err := c.Storage.Set(KeyUserEmail, res.User.Email); err != nil {
		return err
	}
	c.API.Token = res.Token
	if res.Token != "" {
		return c.Storage.Set(KeyAuthToken, res.Token)
	}
	return c.Storage.Remove(KeyAuthToken)
}

// Logout tells the server and clears the local auth state.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.API.Logout(ctx); err != nil {
		c.Notes.Notify(NotifyError, "Error during logout. Please try again.")
		return err
	}
	for _, k := range []string{KeyAuthenticated, KeyUserEmail, KeyAuthToken} {
		if err := c.Storage.Remove(k); err != nil {
			return err
		}
	}
	c.API.Token = ""
	c.mu.Lock()
	c.state = StateUnauthenticated
	c.selected, c.passengers = nil, nil
	c.mu.Unlock()
	c.Notes.Notify(NotifyInfo, "Logout successful. Redirecting to login...")
	return nil
}

// Search replaces the listing with routes matching from/to.  date is
// sent along with the query.
func (c *Controller) Search(ctx context.Context, from, to, date string) ([]model.Route, error) {
	f := model.RouteFilter{From: from, To: to, Date: date}
	c.mu.Lock()
	c.state = StateSearching
	c.mu.Unlock()

	routes, err := c.API.Routes(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	if err != nil {
		c.Notes.Notify(NotifyError, "Error searching routes. Please try again.")
		return nil, err
	}
	c.routes, c.filter = routes, f
	c.selected, c.passengers = nil, nil
	return append([]model.Route(nil), routes...), nil
}

// SelectRoute opens the booking form for a route in the current listing
// with one empty passenger.
func (c *Controller) SelectRoute(id int) (model.Route, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.routes {
		if c.routes[i].ID == id {
			r := c.routes[i]
			c.selected = &r
			c.passengers = make([]model.Passenger, 1)
			c.state = StateRouteSelected
			return r, nil
		}
	}
	return model.Route{}, ErrUnknownRoute
}

// SetPassengerCount resizes the passenger list, keeping entries already
// filled in.
func (c *Controller) SetPassengerCount(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return ErrNoRouteSelected
	}
	if n < 1 {
		return fmt.Errorf("%w: count %d", ErrInvalidPassengerSlot, n)
	}
	if n <= len(c.passengers) {
		c.passengers = c.passengers[:n]
		return nil
	}
	c.passengers = append(c.passengers, make([]model.Passenger, n-len(c.passengers))...)
	return nil
}

// SetPassenger fills passenger i (zero based).
func (c *Controller) SetPassenger(i int, p model.Passenger) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return ErrNoRouteSelected
	}
	if i < 0 || i >= len(c.passengers) {
		return fmt.Errorf("%w: index %d", ErrInvalidPassengerSlot, i)
	}
	c.passengers[i] = p
	return nil
}

func (c *Controller) Passengers() []model.Passenger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Passenger(nil), c.passengers...)
}

// Total is the running fare for the selected route, 0 when none.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return 0
	}
	return TotalAmount(c.selected.Price, len(c.passengers))
}

// Confirm books the selected route for the current passengers and
// returns the server's booking id.  The snapshot for the details view is
// cached before the request and gets the real id on success.  On any
// failure an error notification is raised and the form stays open.
func (c *Controller) Confirm(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.selected == nil {
		c.mu.Unlock()
		return 0, ErrNoRouteSelected
	}
	for _, p := range c.passengers {
		if !p.Complete() {
			c.mu.Unlock()
			return 0, ErrIncompletePassengers
		}
	}
	r := *c.selected
	passengers := append([]model.Passenger(nil), c.passengers...)
	total := TotalAmount(r.Price, len(passengers))
	snap := BookingSnapshot{
		ID:            "BK-" + strconv.FormatInt(c.Now().UnixMilli(), 10),
		From:          r.From,
		To:            r.To,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Duration:      r.Duration,
		BusType:       string(r.BusType),
		TravelDate:    c.filter.Date,
		TotalAmount:   total,
		Passengers:    passengers,
	}
	c.state = StateBooking
	c.mu.Unlock()

	if err := c.saveSnapshot(snap); err != nil {
		c.setState(StateRouteSelected)
		return 0, err
	}

	res, err := c.API.Book(ctx, BookRequest{RouteID: r.ID, Passengers: passengers, TotalAmount: total})
	if err != nil {
		c.setState(StateRouteSelected)
		var ae *APIError
		if errors.As(err, &ae) {
			c.Notes.Notify(NotifyError, ae.Message)
		} else {
			c.Notes.Notify(NotifyError, "Error processing booking. Please try again.")
		}
		return 0, err
	}

	snap.ID = strconv.Itoa(res.BookingID)
	if err := c.saveSnapshot(snap); err != nil {
		return res.BookingID, err
	}
	c.mu.Lock()
	c.state = StateConfirmed
	c.selected, c.passengers = nil, nil
	c.filter = model.RouteFilter{}
	c.mu.Unlock()

	// Seat counts changed; reload the unfiltered listing.
	if routes, err := c.API.Routes(ctx, model.RouteFilter{}); err == nil {
		c.mu.Lock()
		c.routes = routes
		c.mu.Unlock()
	}
	return res.BookingID, nil
}

func (c *Controller) saveSnapshot(s BookingSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.Storage.Set(KeyCurrentBooking, string(raw))
}

// CurrentBooking reads the cached snapshot, if any.
func (c *Controller) CurrentBooking() (BookingSnapshot, bool) {
	raw, ok := c.Storage.Get(KeyCurrentBooking)
	if !ok {
		return BookingSnapshot{}, false
	}
	var s BookingSnapshot
	if json.Unmarshal([]byte(raw), &s) != nil {
		return BookingSnapshot{}, false
	}
	return s, true
}

// OpenBookingDetails records id for the details view and returns the
// location to navigate to.
func (c *Controller) OpenBookingDetails(id int) (string, error) {
	if err := c.Storage.Set(KeyCurrentID, strconv.Itoa(id)); err != nil {
		return "", err
	}
	return "/booking-details.html?id=" + strconv.Itoa(id), nil
}

// BookingDetails fetches the booking recorded by OpenBookingDetails.
func (c *Controller) BookingDetails(ctx context.Context) (model.Booking, error) {
	raw, ok := c.Storage.Get(KeyCurrentID)
	if !ok {
		return model.Booking{}, ErrNoCurrentBooking
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %q", ErrNoCurrentBooking, raw)
	}
	return c.API.Booking(ctx, id)
}

// Cards decorates the current listing for display.
func (c *Controller) Cards() []RouteCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	cards := make([]RouteCard, 0, len(c.routes))
	for _, r := range c.routes {
		cards = append(cards, NewRouteCard(r))
	}
	return cards
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) notifyErr(err error, fallback string) {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		c.Notes.Notify(NotifyError, ae.Message)
		return
	}
	c.Notes.Notify(NotifyError, fallback)
}
