package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"DRIVEGO_BACK-END/internal/booking"
	"DRIVEGO_BACK-END/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetCar(ctx context.Context, carID int64) (*models.Car, error) {
	args := m.Called(ctx, carID)
	if car := args.Get(0); car != nil {
		return car.(*models.Car), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) FindOverlapping(ctx context.Context, carID int64, pickup, dropoff time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, carID, pickup, dropoff)
	if bs := args.Get(0); bs != nil {
		return bs.([]models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Insert(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]booking.Trip, error) {
	args := m.Called(ctx, userID)
	if ts := args.Get(0); ts != nil {
		return ts.([]booking.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockMailer struct {
	sent chan string
}

func (m *mockMailer) SendBookingConfirmation(to, carName, pickupDate, dropoffDate string, total float64) error {
	m.sent <- to
	return nil
}

var testCar = &models.Car{ID: 7, Brand: "Honda", Name: "Civic", PricePerDay: 100}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestCheckAvailability_Free(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mustDate(t, "2024-01-01"), mustDate(t, "2024-01-03")).
		Return([]models.Booking{}, nil)

	out, err := svc.CheckAvailability(ctx, 7, "2024-01-01", "2024-01-03")

	require.NoError(t, err)
	assert.True(t, out.Available)
	assert.Empty(t, out.Reasons)
}

func TestCheckAvailability_OverlapReported(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mock.Anything, mock.Anything).
		Return([]models.Booking{{
			PickupDate:  mustDate(t, "2024-01-01"),
			DropoffDate: mustDate(t, "2024-01-03"),
		}}, nil)

	out, err := svc.CheckAvailability(ctx, 7, "2024-01-02", "2024-01-05")

	require.NoError(t, err)
	assert.False(t, out.Available)
	assert.Equal(t, []string{"already booked Jan 1 - Jan 3"}, out.Reasons)
}

func TestCheckAvailability_BadDatesRejected(t *testing.T) {
	svc := booking.NewService(new(mockRepository), nil, nil)

	_, err := svc.CheckAvailability(context.Background(), 7, "not-a-date", "2024-01-03")

	ve, ok := booking.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Errors[0], "pickupDate")
}

func TestCheckAvailability_ReversedRangeRejected(t *testing.T) {
	svc := booking.NewService(new(mockRepository), nil, nil)

	_, err := svc.CheckAvailability(context.Background(), 7, "2024-01-05", "2024-01-01")

	ve, ok := booking.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"dropoffDate cannot be before pickupDate"}, ve.Errors)
}

func TestCreate_Success(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mock.Anything, mock.Anything).Return([]models.Booking{}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	b, err := svc.Create(ctx, userID, "", booking.CreateInput{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Airport",
	}, "")

	require.NoError(t, err)
	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, 2, b.RentalDays)
	assert.Equal(t, 200.0, b.Subtotal)
	assert.Equal(t, 20.0, b.Taxes)
	assert.Equal(t, 220.0, b.Total)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	repo.AssertExpectations(t)
}

func TestCreate_MissingFieldsRejected(t *testing.T) {
	svc := booking.NewService(new(mockRepository), nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(), "", booking.CreateInput{CarID: 7}, "")

	ve, ok := booking.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 3)
}

func TestCreate_ConflictWhenRangeTaken(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mock.Anything, mock.Anything).
		Return([]models.Booking{{ID: uuid.New()}}, nil)

	_, err := svc.Create(ctx, uuid.New(), "", booking.CreateInput{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Airport",
	}, "")

	assert.ErrorIs(t, err, booking.ErrConflict)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreate_IdempotencyKeyDeduplicates(t *testing.T) {
	repo := new(mockRepository)
	db, mockRedis := redismock.NewClientMock()
	svc := booking.NewService(repo, db, nil)
	ctx := context.Background()

	existingID := uuid.New()
	existing := &models.Booking{ID: existingID, Status: models.BookingConfirmed}

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("GetByID", ctx, existingID).Return(existing, nil)
	mockRedis.ExpectGet("booking:idem:key-1").SetVal(existingID.String())

	b, err := svc.Create(ctx, uuid.New(), "", booking.CreateInput{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Airport",
	}, "key-1")

	require.NoError(t, err)
	assert.Equal(t, existingID, b.ID)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	require.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestCreate_StoresIdempotencyKey(t *testing.T) {
	repo := new(mockRepository)
	db, mockRedis := redismock.NewClientMock()
	svc := booking.NewService(repo, db, nil)
	ctx := context.Background()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mock.Anything, mock.Anything).Return([]models.Booking{}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	mockRedis.ExpectGet("booking:idem:key-2").RedisNil()
	mockRedis.Regexp().ExpectSetNX("booking:idem:key-2", `.*`, 24*time.Hour).SetVal(true)

	_, err := svc.Create(ctx, uuid.New(), "", booking.CreateInput{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Airport",
	}, "key-2")

	require.NoError(t, err)
	require.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestCreate_SendsConfirmationEmail(t *testing.T) {
	repo := new(mockRepository)
	mailer := &mockMailer{sent: make(chan string, 1)}
	svc := booking.NewService(repo, nil, mailer)
	ctx := context.Background()

	repo.On("GetCar", ctx, int64(7)).Return(testCar, nil)
	repo.On("FindOverlapping", ctx, int64(7), mock.Anything, mock.Anything).Return([]models.Booking{}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	_, err := svc.Create(ctx, uuid.New(), "renter@example.com", booking.CreateInput{
		CarID:          7,
		PickupDate:     "2024-01-01",
		DropoffDate:    "2024-01-03",
		PickupLocation: "Airport",
	}, "")

	require.NoError(t, err)
	select {
	case to := <-mailer.sent:
		assert.Equal(t, "renter@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("confirmation email was not sent")
	}
}

func TestListForUser_PartitionsByTab(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	future := time.Now().AddDate(0, 1, 0)
	past := time.Now().AddDate(0, -1, 0)
	trips := []booking.Trip{
		{Booking: models.Booking{ID: uuid.New(), DropoffDate: future, Status: models.BookingConfirmed}},
		{Booking: models.Booking{ID: uuid.New(), DropoffDate: past, Status: models.BookingCompleted}},
		{Booking: models.Booking{ID: uuid.New(), DropoffDate: future, Status: models.BookingCancelled}},
	}
	repo.On("ListByUser", ctx, userID).Return(trips, nil)

	upcoming, err := svc.ListForUser(ctx, userID, "upcoming")
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)

	pastTrips, err := svc.ListForUser(ctx, userID, "past")
	require.NoError(t, err)
	assert.Len(t, pastTrips, 2, "completed and cancelled trips are history")
}

func TestCancel_OwnerOnly(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()
	owner := uuid.New()
	bookingID := uuid.New()

	repo.On("GetByID", ctx, bookingID).Return(&models.Booking{
		ID:     bookingID,
		UserID: owner,
		Status: models.BookingConfirmed,
	}, nil)

	err := svc.Cancel(ctx, uuid.New(), bookingID)
	assert.ErrorIs(t, err, booking.ErrNotOwner)

	repo.On("UpdateStatus", ctx, bookingID, models.BookingCancelled).Return(nil)
	err = svc.Cancel(ctx, owner, bookingID)
	assert.NoError(t, err)
}

func TestCancel_FinishedBookingRejected(t *testing.T) {
	repo := new(mockRepository)
	svc := booking.NewService(repo, nil, nil)
	ctx := context.Background()
	owner := uuid.New()
	bookingID := uuid.New()

	repo.On("GetByID", ctx, bookingID).Return(&models.Booking{
		ID:     bookingID,
		UserID: owner,
		Status: models.BookingCompleted,
	}, nil)

	err := svc.Cancel(ctx, owner, bookingID)

	assert.ErrorIs(t, err, booking.ErrAlreadyFinished)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
