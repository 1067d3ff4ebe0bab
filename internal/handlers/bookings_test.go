package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DRIVEGO_BACK-END/internal/booking"
	"DRIVEGO_BACK-END/internal/dto"
	"DRIVEGO_BACK-END/internal/models"
	"DRIVEGO_BACK-END/internal/utils"
)

// fakeRepo is an in-memory booking.Repository for handler-level tests
type fakeRepo struct {
	cars     map[int64]models.Car
	bookings []models.Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		cars: map[int64]models.Car{
			1: {ID: 1, Brand: "Honda", Name: "Civic", Type: "Sedan", PricePerDay: 55,
				FuelType: "Petrol", Transmission: "Manual", Rating: 4.5},
		},
	}
}

func (r *fakeRepo) GetCar(ctx context.Context, carID int64) (*models.Car, error) {
	c, ok := r.cars[carID]
	if !ok {
		return nil, booking.ErrCarNotFound
	}
	return &c, nil
}

func (r *fakeRepo) FindOverlapping(ctx context.Context, carID int64, pickup, dropoff time.Time) ([]models.Booking, error) {
	overlaps := []models.Booking{}
	for _, b := range r.bookings {
		if b.CarID == carID && b.Status != models.BookingCancelled &&
			b.PickupDate.Before(dropoff) && b.DropoffDate.After(pickup) {
			overlaps = append(overlaps, b)
		}
	}
	return overlaps, nil
}

func (r *fakeRepo) Insert(ctx context.Context, b *models.Booking) error {
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	for _, b := range r.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]booking.Trip, error) {
	trips := []booking.Trip{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			trips = append(trips, booking.Trip{Booking: b, Car: r.cars[b.CarID]})
		}
	}
	return trips, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			r.bookings[i].Status = status
			return nil
		}
	}
	return booking.ErrBookingNotFound
}

func newBookingsHandler(repo booking.Repository) *BookingsHandler {
	return NewBookingsHandler(booking.NewService(repo, nil, nil))
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	ctx := utils.WithUserID(r.Context(), userID)
	ctx = utils.WithEmail(ctx, "renter@example.com")
	return r.WithContext(ctx)
}

func TestCheckAvailability_Free(t *testing.T) {
	h := newBookingsHandler(newFakeRepo())

	r := authedRequest(http.MethodPost, "/api/check-availability",
		`{"carId":1,"pickupDate":"2024-06-01","dropoffDate":"2024-06-03"}`, uuid.New())
	w := httptest.NewRecorder()
	h.CheckAvailability(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CheckAvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Empty(t, resp.Errors)
}

func TestCheckAvailability_Overlap(t *testing.T) {
	repo := newFakeRepo()
	repo.bookings = append(repo.bookings, models.Booking{
		ID: uuid.New(), CarID: 1, UserID: uuid.New(),
		PickupDate:  time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		DropoffDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		Status:      models.BookingConfirmed,
	})
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodPost, "/api/check-availability",
		`{"carId":1,"pickupDate":"2024-06-01","dropoffDate":"2024-06-03"}`, uuid.New())
	w := httptest.NewRecorder()
	h.CheckAvailability(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.CheckAvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.NotEmpty(t, resp.Errors)
}

func TestCheckAvailability_BadDates(t *testing.T) {
	h := newBookingsHandler(newFakeRepo())

	r := authedRequest(http.MethodPost, "/api/check-availability",
		`{"carId":1,"pickupDate":"not-a-date","dropoffDate":"2024-06-03"}`, uuid.New())
	w := httptest.NewRecorder()
	h.CheckAvailability(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Errors)
}

func TestCheckAvailability_CarNotFound(t *testing.T) {
	h := newBookingsHandler(newFakeRepo())

	r := authedRequest(http.MethodPost, "/api/check-availability",
		`{"carId":99,"pickupDate":"2024-06-01","dropoffDate":"2024-06-03"}`, uuid.New())
	w := httptest.NewRecorder()
	h.CheckAvailability(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBook_Created(t *testing.T) {
	repo := newFakeRepo()
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodPost, "/api/book",
		`{"formData":{"carId":1,"pickupDate":"2024-06-01","dropoffDate":"2024-06-03","pickupLocation":"Downtown","totalPrice":121}}`,
		uuid.New())
	r.Header.Set("Idempotency-Key", uuid.New().String())
	w := httptest.NewRecorder()
	h.Book(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.BookingID)
	require.Len(t, repo.bookings, 1)
	// Price is recomputed server-side from the car's rate, not taken from the form
	assert.Equal(t, 2, repo.bookings[0].RentalDays)
	assert.Equal(t, 110.0, repo.bookings[0].Subtotal)
	assert.Equal(t, 11.0, repo.bookings[0].Taxes)
	assert.Equal(t, 121.0, repo.bookings[0].Total)
}

func TestBook_Conflict(t *testing.T) {
	repo := newFakeRepo()
	repo.bookings = append(repo.bookings, models.Booking{
		ID: uuid.New(), CarID: 1, UserID: uuid.New(),
		PickupDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DropoffDate: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Status:      models.BookingConfirmed,
	})
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodPost, "/api/book",
		`{"formData":{"carId":1,"pickupDate":"2024-06-02","dropoffDate":"2024-06-05","pickupLocation":"Downtown"}}`,
		uuid.New())
	w := httptest.NewRecorder()
	h.Book(w, r)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "just booked")
	assert.Len(t, repo.bookings, 1)
}

func TestBook_ValidationErrors(t *testing.T) {
	h := newBookingsHandler(newFakeRepo())

	r := authedRequest(http.MethodPost, "/api/book", `{"formData":{"carId":1}}`, uuid.New())
	w := httptest.NewRecorder()
	h.Book(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 3)
}

func TestBook_Unauthenticated(t *testing.T) {
	h := newBookingsHandler(newFakeRepo())

	r := httptest.NewRequest(http.MethodPost, "/api/book",
		strings.NewReader(`{"formData":{"carId":1,"pickupDate":"2024-06-01","dropoffDate":"2024-06-03","pickupLocation":"Downtown"}}`))
	w := httptest.NewRecorder()
	h.Book(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUserBookings_Tab(t *testing.T) {
	userID := uuid.New()
	repo := newFakeRepo()
	repo.bookings = append(repo.bookings,
		models.Booking{
			ID: uuid.New(), CarID: 1, UserID: userID,
			PickupDate:  time.Now().AddDate(0, 0, 7),
			DropoffDate: time.Now().AddDate(0, 0, 9),
			Status:      models.BookingConfirmed,
		},
		models.Booking{
			ID: uuid.New(), CarID: 1, UserID: userID,
			PickupDate:  time.Now().AddDate(0, -2, 0),
			DropoffDate: time.Now().AddDate(0, -2, 2),
			Status:      models.BookingCompleted,
		},
	)
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodGet, "/api/bookings/user?tab=upcoming", "", userID)
	w := httptest.NewRecorder()
	h.ListUserBookings(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.BookingListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "upcoming", resp.Tab)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "Honda", resp.Bookings[0].CarBrand)
}

func TestCancelBooking_NotOwner(t *testing.T) {
	otherID := uuid.New()
	bookingID := uuid.New()
	repo := newFakeRepo()
	repo.bookings = append(repo.bookings, models.Booking{
		ID: bookingID, CarID: 1, UserID: otherID,
		PickupDate:  time.Now().AddDate(0, 0, 7),
		DropoffDate: time.Now().AddDate(0, 0, 9),
		Status:      models.BookingConfirmed,
	})
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodDelete, "/api/bookings/"+bookingID.String(), "", uuid.New())
	w := httptest.NewRecorder()
	h.CancelBooking(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelBooking_Success(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()
	repo := newFakeRepo()
	repo.bookings = append(repo.bookings, models.Booking{
		ID: bookingID, CarID: 1, UserID: userID,
		PickupDate:  time.Now().AddDate(0, 0, 7),
		DropoffDate: time.Now().AddDate(0, 0, 9),
		Status:      models.BookingConfirmed,
	})
	h := newBookingsHandler(repo)

	r := authedRequest(http.MethodDelete, "/api/bookings/"+bookingID.String(), "", userID)
	w := httptest.NewRecorder()
	h.CancelBooking(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCancelled, repo.bookings[0].Status)
}
