package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DRIVEGO_BACK-END/internal/apiclient"
	"DRIVEGO_BACK-END/internal/bookingflow"
	"DRIVEGO_BACK-END/internal/dto"
)

func TestCheckAvailability_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/check-availability", r.URL.Path)

		var req dto.CheckAvailabilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(7), req.CarID)
		assert.Equal(t, "2024-01-01", req.PickupDate)

		json.NewEncoder(w).Encode(dto.CheckAvailabilityResponse{Available: true})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	res, err := c.CheckAvailability(context.Background(), 7, "2024-01-01", "2024-01-03")

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Reasons)
}

func TestCheckAvailability_UnavailableWithReasons(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.CheckAvailabilityResponse{
			Available: false,
			Errors:    []string{"already booked Jan 1-3"},
		})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	res, err := c.CheckAvailability(context.Background(), 7, "2024-01-01", "2024-01-03")

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"already booked Jan 1-3"}, res.Reasons)
}

func TestCheckAvailability_BadRequestBecomesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Validation error", Errors: []string{"pickupDate must be ISO 8601"}})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	res, err := c.CheckAvailability(context.Background(), 7, "bad-date", "2024-01-03")

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"pickupDate must be ISO 8601"}, res.Reasons)
}

func TestCheckAvailability_ServerFaultIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	_, err := c.CheckAvailability(context.Background(), 7, "2024-01-01", "2024-01-03")

	assert.Error(t, err)
}

func TestSubmitBooking_Confirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/book", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var req dto.BookRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Downtown", req.FormData.PickupLocation)
		assert.Equal(t, 220.0, req.FormData.TotalPrice)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dto.BookResponse{Success: true, BookingID: "b-42"})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	c.SetToken("tok-1")
	res, err := c.SubmitBooking(context.Background(), bookingflow.Request{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Downtown",
		TotalPrice:     220,
		IdempotencyKey: "key-1",
	})

	require.NoError(t, err)
	assert.Equal(t, bookingflow.OutcomeConfirmed, res.Outcome)
	assert.Equal(t, "b-42", res.BookingID)
}

func TestSubmitBooking_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Conflict", Message: "car was just booked by another user"})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	res, err := c.SubmitBooking(context.Background(), bookingflow.Request{CarID: 7})

	require.NoError(t, err)
	assert.Equal(t, bookingflow.OutcomeConflict, res.Outcome)
	assert.Equal(t, []string{"car was just booked by another user"}, res.Errors)
}

func TestSubmitBooking_ValidationFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Validation error", Errors: []string{"pickupLocation is required"}})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	res, err := c.SubmitBooking(context.Background(), bookingflow.Request{CarID: 7})

	require.NoError(t, err)
	assert.Equal(t, bookingflow.OutcomeValidationFailed, res.Outcome)
	assert.Equal(t, []string{"pickupLocation is required"}, res.Errors)
}

func TestSubmitBooking_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := apiclient.New(srv.URL)
	_, err := c.SubmitBooking(context.Background(), bookingflow.Request{CarID: 7})

	assert.Error(t, err)
}

func TestLogin_StoresToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(dto.AuthResponse{Success: true, Token: "tok-99"})
		case "/api/bookings/user":
			calls++
			assert.Equal(t, "Bearer tok-99", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(dto.BookingListResponse{Tab: "upcoming"})
		}
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	auth, err := c.Login(context.Background(), "demo@example.com", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "tok-99", auth.Token)

	_, err = c.GetUserBookings(context.Background(), "upcoming")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetCars_PassesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cars", r.URL.Path)
		assert.Equal(t, "SUV", r.URL.Query().Get("type"))
		json.NewEncoder(w).Encode(dto.CarListResponse{
			Cars:       []dto.CarResponse{{ID: 5, Brand: "BMW", Name: "X5"}},
			Pagination: dto.Pagination{Total: 1, Limit: 9},
		})
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	list, err := c.GetCars(context.Background(), "type=SUV")

	require.NoError(t, err)
	require.Len(t, list.Cars, 1)
	assert.Equal(t, "X5", list.Cars[0].Name)
}

func TestFlowAgainstClient_EndToEnd(t *testing.T) {
	// Wire the flow controller to the HTTP client against a stub server:
	// check says available, then submit races out with a 409.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/check-availability":
			json.NewEncoder(w).Encode(dto.CheckAvailabilityResponse{Available: true})
		case "/api/book":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Conflict", Message: "car was just booked by another user"})
		}
	}))
	defer srv.Close()

	c := apiclient.New(srv.URL)
	f := bookingflow.New(bookingflow.Car{ID: 7, PricePerDay: 100}, c, c)
	f.SetPickupDate("2024-01-01")
	f.SetDropoffDate("2024-01-03")
	f.SetPickupLocation("Airport")

	status, err := f.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, bookingflow.StatusAvailable, status)

	res, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bookingflow.OutcomeConflict, res.Outcome)

	status, _ = f.Status()
	assert.Equal(t, bookingflow.StatusNotChecked, status)
}
