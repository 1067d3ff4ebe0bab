// Package apiclient is the HTTP client for the DriveGo API. It implements the
// bookingflow Checker and Submitter against the /api/check-availability and
// /api/book endpoints and covers the rest of the API surface the web app uses.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"DRIVEGO_BACK-END/internal/bookingflow"
	"DRIVEGO_BACK-END/internal/dto"
)

// Client talks to the DriveGo backend. The zero value is not usable; create
// one with New. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080")
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the bearer token attached to subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.httpClient.Do(req)
}

func decodeBody(resp *http.Response, dst interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(dst)
}

// CheckAvailability asks the server whether the car is free for the range.
// Business unavailability (including rejected dates) comes back as an
// unavailable result with reasons; any other failure is a transport error.
func (c *Client) CheckAvailability(ctx context.Context, carID int64, pickupDate, dropoffDate string) (bookingflow.CheckResult, error) {
	req := dto.CheckAvailabilityRequest{
		CarID:       carID,
		PickupDate:  pickupDate,
		DropoffDate: dropoffDate,
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/check-availability", req, nil)
	if err != nil {
		return bookingflow.CheckResult{}, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var body dto.CheckAvailabilityResponse
		if err := decodeBody(resp, &body); err != nil {
			return bookingflow.CheckResult{}, fmt.Errorf("decode availability response: %w", err)
		}
		return bookingflow.CheckResult{Available: body.Available, Reasons: body.Errors}, nil
	case http.StatusBadRequest:
		var body dto.ErrorResponse
		if err := decodeBody(resp, &body); err != nil {
			return bookingflow.CheckResult{}, fmt.Errorf("decode availability error: %w", err)
		}
		reasons := body.Errors
		if len(reasons) == 0 && body.Message != "" {
			reasons = []string{body.Message}
		}
		return bookingflow.CheckResult{Available: false, Reasons: reasons}, nil
	default:
		resp.Body.Close()
		return bookingflow.CheckResult{}, fmt.Errorf("check availability: unexpected status %d", resp.StatusCode)
	}
}

// SubmitBooking posts the booking form. The idempotency key travels in a
// header so a retried identical request is deduplicated server-side.
func (c *Client) SubmitBooking(ctx context.Context, req bookingflow.Request) (bookingflow.SubmitResult, error) {
	body := dto.BookRequest{
		FormData: dto.BookFormData{
			CarID:          req.CarID,
			PickupDate:     req.PickupDate,
			DropoffDate:    req.DropoffDate,
			PickupLocation: req.PickupLocation,
			TotalPrice:     req.TotalPrice,
		},
	}

	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/book", body, headers)
	if err != nil {
		return bookingflow.SubmitResult{}, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var ok dto.BookResponse
		if err := decodeBody(resp, &ok); err != nil {
			return bookingflow.SubmitResult{}, fmt.Errorf("decode book response: %w", err)
		}
		return bookingflow.SubmitResult{Outcome: bookingflow.OutcomeConfirmed, BookingID: ok.BookingID}, nil
	case http.StatusConflict:
		var errBody dto.ErrorResponse
		_ = decodeBody(resp, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = "car was just booked by another user"
		}
		return bookingflow.SubmitResult{Outcome: bookingflow.OutcomeConflict, Errors: []string{msg}}, nil
	case http.StatusBadRequest:
		var errBody dto.ErrorResponse
		if err := decodeBody(resp, &errBody); err != nil {
			return bookingflow.SubmitResult{}, fmt.Errorf("decode book error: %w", err)
		}
		errs := errBody.Errors
		if len(errs) == 0 && errBody.Message != "" {
			errs = []string{errBody.Message}
		}
		return bookingflow.SubmitResult{Outcome: bookingflow.OutcomeValidationFailed, Errors: errs}, nil
	default:
		resp.Body.Close()
		return bookingflow.SubmitResult{}, fmt.Errorf("book: unexpected status %d", resp.StatusCode)
	}
}

// Login authenticates with email and password and stores the returned token
// for subsequent requests
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "login")
	}

	var auth dto.AuthResponse
	if err := decodeBody(resp, &auth); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	c.SetToken(auth.Token)
	return &auth, nil
}

// Signup registers a new account and stores the returned token
func (c *Client) Signup(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/register", req, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp, "signup")
	}

	var auth dto.AuthResponse
	if err := decodeBody(resp, &auth); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	c.SetToken(auth.Token)
	return &auth, nil
}

// GetCars fetches a page of the catalog. The query string is passed through
// verbatim (e.g. "type=SUV&fuel_type=Electric&limit=9").
func (c *Client) GetCars(ctx context.Context, query string) (*dto.CarListResponse, error) {
	path := "/api/cars"
	if query != "" {
		path += "?" + query
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "get cars")
	}

	var list dto.CarListResponse
	if err := decodeBody(resp, &list); err != nil {
		return nil, fmt.Errorf("decode car list: %w", err)
	}
	return &list, nil
}

// GetCar fetches a single car by ID
func (c *Client) GetCar(ctx context.Context, id int64) (*dto.CarResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/cars/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "get car")
	}

	var car dto.CarResponse
	if err := decodeBody(resp, &car); err != nil {
		return nil, fmt.Errorf("decode car: %w", err)
	}
	return &car, nil
}

// GetUserBookings fetches the caller's trips for the given tab
// ("upcoming" or "past")
func (c *Client) GetUserBookings(ctx context.Context, tab string) (*dto.BookingListResponse, error) {
	path := "/api/bookings/user"
	if tab != "" {
		path += "?tab=" + tab
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp, "get bookings")
	}

	var list dto.BookingListResponse
	if err := decodeBody(resp, &list); err != nil {
		return nil, fmt.Errorf("decode booking list: %w", err)
	}
	return &list, nil
}

// CancelBooking cancels an upcoming trip
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/bookings/"+bookingID, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError(resp, "cancel booking")
	}
	return nil
}

func apiError(resp *http.Response, op string) error {
	var body dto.ErrorResponse
	_ = decodeBody(resp, &body)
	if body.Error != "" {
		return fmt.Errorf("%s: %s (status %d)", op, body.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
}

var (
	_ bookingflow.Checker   = (*Client)(nil)
	_ bookingflow.Submitter = (*Client)(nil)
)
