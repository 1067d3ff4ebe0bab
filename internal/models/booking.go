package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses
const (
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// Booking represents a confirmed car rental for a date range
type Booking struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CarID          int64     `json:"car_id" db:"car_id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	PickupDate     time.Time `json:"pickup_date" db:"pickup_date"`
	DropoffDate    time.Time `json:"dropoff_date" db:"dropoff_date"`
	PickupLocation string    `json:"pickup_location" db:"pickup_location"`
	RentalDays     int       `json:"rental_days" db:"rental_days"`
	Subtotal       float64   `json:"subtotal" db:"subtotal"`
	Taxes          float64   `json:"taxes" db:"taxes"`
	Total          float64   `json:"total" db:"total"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// SavedCar represents a car a user bookmarked for later
type SavedCar struct {
	UserID  uuid.UUID `json:"user_id" db:"user_id"`
	CarID   int64     `json:"car_id" db:"car_id"`
	SavedAt time.Time `json:"saved_at" db:"saved_at"`
}
