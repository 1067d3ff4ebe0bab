// Package postgres implements the booking repository on pgx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"DRIVEGO_BACK-END/internal/booking"
	"DRIVEGO_BACK-END/internal/models"
)

// BookingRepository is the pgx-backed implementation of booking.Repository
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetCar loads a catalog car by ID
func (r *BookingRepository) GetCar(ctx context.Context, carID int64) (*models.Car, error) {
	var c models.Car
	err := r.db.QueryRow(ctx,
		`SELECT id, brand, name, type, price_per_day, fuel_type, transmission, image_url, rating, description
           FROM cars WHERE id = $1`, carID).Scan(
		&c.ID, &c.Brand, &c.Name, &c.Type, &c.PricePerDay, &c.FuelType, &c.Transmission,
		&c.ImageURL, &c.Rating, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindOverlapping returns non-cancelled bookings of the car whose date range
// intersects [pickup, dropoff). Two ranges overlap when each starts before the
// other ends.
func (r *BookingRepository) FindOverlapping(ctx context.Context, carID int64, pickup, dropoff time.Time) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, car_id, user_id, pickup_date, dropoff_date, pickup_location,
                rental_days, subtotal, taxes, total, status, created_at, updated_at
           FROM bookings
          WHERE car_id = $1
            AND status <> 'cancelled'
            AND pickup_date < $3
            AND dropoff_date > $2
          ORDER BY pickup_date`, carID, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Insert stores a new booking
func (r *BookingRepository) Insert(ctx context.Context, b *models.Booking) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, car_id, user_id, pickup_date, dropoff_date, pickup_location,
                               rental_days, subtotal, taxes, total, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.CarID, b.UserID, b.PickupDate, b.DropoffDate, b.PickupLocation,
		b.RentalDays, b.Subtotal, b.Taxes, b.Total, b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

// GetByID loads a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := r.db.QueryRow(ctx,
		`SELECT id, car_id, user_id, pickup_date, dropoff_date, pickup_location,
                rental_days, subtotal, taxes, total, status, created_at, updated_at
           FROM bookings WHERE id = $1`, id).Scan(
		&b.ID, &b.CarID, &b.UserID, &b.PickupDate, &b.DropoffDate, &b.PickupLocation,
		&b.RentalDays, &b.Subtotal, &b.Taxes, &b.Total, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListByUser returns all of a user's bookings joined with their cars, newest
// pickup first
func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]booking.Trip, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.car_id, b.user_id, b.pickup_date, b.dropoff_date, b.pickup_location,
                b.rental_days, b.subtotal, b.taxes, b.total, b.status, b.created_at, b.updated_at,
                c.id, c.brand, c.name, c.type, c.price_per_day, c.fuel_type, c.transmission,
                c.image_url, c.rating, c.description
           FROM bookings b
           JOIN cars c ON c.id = b.car_id
          WHERE b.user_id = $1
          ORDER BY b.pickup_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]booking.Trip, 0)
	for rows.Next() {
		var t booking.Trip
		b := &t.Booking
		c := &t.Car
		if err := rows.Scan(
			&b.ID, &b.CarID, &b.UserID, &b.PickupDate, &b.DropoffDate, &b.PickupLocation,
			&b.RentalDays, &b.Subtotal, &b.Taxes, &b.Total, &b.Status, &b.CreatedAt, &b.UpdatedAt,
			&c.ID, &c.Brand, &c.Name, &c.Type, &c.PricePerDay, &c.FuelType, &c.Transmission,
			&c.ImageURL, &c.Rating, &c.Description); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// UpdateStatus sets the booking status
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func scanBookings(rows pgx.Rows) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.CarID, &b.UserID, &b.PickupDate, &b.DropoffDate, &b.PickupLocation,
			&b.RentalDays, &b.Subtotal, &b.Taxes, &b.Total, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ booking.Repository = (*BookingRepository)(nil)
