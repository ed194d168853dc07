// Package client drives the booking API the way the browser pages do:
// a typed HTTP client, a small key/value store standing in for local
// storage, and a Controller holding the page state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// AuthResult is the body of a successful login or registration.  Token
// is only set when the server runs the JWT gate.
type AuthResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    model.UserSummary `json:"user"`
	Token   string            `json:"token,omitempty"`
}

// BookRequest is what the booking form submits.
type BookRequest struct {
	RouteID     int               `json:"routeId"`
	Passengers  []model.Passenger `json:"passengers"`
	TotalAmount int               `json:"totalAmount"`
}

// BookResult is the body of a successful booking.
type BookResult struct {
	Success   bool   `json:"success"`
	BookingID int    `json:"bookingId"`
	Message   string `json:"message"`
}

// APIClient talks to one server.  Protected calls carry the bearer Token
// when one is set and the x-auth-status flag otherwise.
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *APIClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/login", false,
		map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *APIClient) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/register", false,
		map[string]string{"name": name, "email": email, "password": password}, &out)
	return out, err
}

func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", false, nil, nil)
}

func (c *APIClient) Cities(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/api/cities", true, nil, &out)
	return out, err
}

// Routes lists routes; empty filter fields are left out of the query.
func (c *APIClient) Routes(ctx context.Context, f model.RouteFilter) ([]model.Route, error) {
	q := url.Values{}
	for k, v := range map[string]string{"from": f.From, "to": f.To, "date": f.Date} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/api/routes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []model.Route
	err := c.do(ctx, http.MethodGet, path, true, nil, &out)
	return out, err
}

func (c *APIClient) Book(ctx context.Context, req BookRequest) (BookResult, error) {
	var out BookResult
	err := c.do(ctx, http.MethodPost, "/api/book", true, req, &out)
	return out, err
}

func (c *APIClient) Booking(ctx context.Context, id int) (model.Booking, error) {
	var out model.Booking
	err := c.do(ctx, http.MethodGet, "/api/booking/"+strconv.Itoa(id), true, nil, &out)
	return out, err
}

func (c *APIClient) do(ctx context.Context, method, path string, gated bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if gated {
		if c.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.Token)
		} else {
			req.Header.Set("x-auth-status", "true")
		}
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
