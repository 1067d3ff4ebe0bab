package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"DRIVEGO_BACK-END/internal/models"
)

// Trip is a booking joined with its catalog car, as shown on the trips page
type Trip struct {
	Booking models.Booking
	Car     models.Car
}

// Repository is the persistence port for the booking service
type Repository interface {
	GetCar(ctx context.Context, carID int64) (*models.Car, error)
	FindOverlapping(ctx context.Context, carID int64, pickup, dropoff time.Time) ([]models.Booking, error)
	Insert(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
