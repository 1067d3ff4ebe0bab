// Package booking is the server-side booking core: advisory availability
// checks, conflict-checked booking creation with idempotency, trip history
// and cancellation.
package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"DRIVEGO_BACK-END/internal/models"
	"DRIVEGO_BACK-END/internal/pricing"
	"DRIVEGO_BACK-END/internal/utils"
)

const (
	idemKeyPrefix = "booking:idem:"
	idemKeyTTL    = 24 * time.Hour
)

// Mailer sends booking confirmations; satisfied by utils.EmailService
type Mailer interface {
	SendBookingConfirmation(to, carName, pickupDate, dropoffDate string, total float64) error
}

// Service implements the booking operations on top of a Repository. Redis
// backs idempotency-key deduplication; mailer is optional.
type Service struct {
	repo   Repository
	redis  *redis.Client
	mailer Mailer
}

// NewService creates a booking service. mailer may be nil when email is not
// configured.
func NewService(repo Repository, redisClient *redis.Client, mailer Mailer) *Service {
	return &Service{repo: repo, redis: redisClient, mailer: mailer}
}

// CheckOutcome is the advisory availability answer
type CheckOutcome struct {
	Available bool
	Reasons   []string
}

// CreateInput is the booking form as submitted by the client
type CreateInput struct {
	CarID          int64
	PickupDate     string
	DropoffDate    string
	PickupLocation string
}

// CheckAvailability reports whether the car is free for the range. The answer
// is advisory only: nothing is reserved, the final arbiter is Create.
func (s *Service) CheckAvailability(ctx context.Context, carID int64, pickupDate, dropoffDate string) (CheckOutcome, error) {
	pickup, dropoff, err := parseRange(pickupDate, dropoffDate)
	if err != nil {
		return CheckOutcome{}, err
	}

	if _, err := s.repo.GetCar(ctx, carID); err != nil {
		return CheckOutcome{}, err
	}

	overlaps, err := s.repo.FindOverlapping(ctx, carID, pickup, dropoff)
	if err != nil {
		return CheckOutcome{}, err
	}
	if len(overlaps) > 0 {
		reasons := make([]string, 0, len(overlaps))
		for _, b := range overlaps {
			reasons = append(reasons, fmt.Sprintf("already booked %s - %s",
				b.PickupDate.Format("Jan 2"), b.DropoffDate.Format("Jan 2")))
		}
		return CheckOutcome{Available: false, Reasons: reasons}, nil
	}

	return CheckOutcome{Available: true}, nil
}

// Create persists a booking after re-checking for overlaps. A repeated request
// carrying the same idempotency key returns the original booking instead of
// creating a second record. Pricing is recomputed server-side; the client's
// total is not trusted.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, userEmail string, in CreateInput, idemKey string) (*models.Booking, error) {
	var errs []string
	if in.CarID <= 0 {
		errs = append(errs, "carId is required")
	}
	if in.PickupDate == "" {
		errs = append(errs, "pickupDate is required")
	}
	if in.DropoffDate == "" {
		errs = append(errs, "dropoffDate is required")
	}
	if in.PickupLocation == "" {
		errs = append(errs, "pickupLocation is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	pickup, dropoff, err := parseRange(in.PickupDate, in.DropoffDate)
	if err != nil {
		return nil, err
	}

	car, err := s.repo.GetCar(ctx, in.CarID)
	if err != nil {
		return nil, err
	}

	// Idempotency: a retried submit with the same key gets the booking the
	// first attempt created.
	if existing := s.lookupIdempotent(ctx, idemKey); existing != nil {
		return existing, nil
	}

	overlaps, err := s.repo.FindOverlapping(ctx, in.CarID, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 {
		return nil, ErrConflict
	}

	quote := pricing.Compute(in.PickupDate, in.DropoffDate, car.PricePerDay)
	now := time.Now()
	b := &models.Booking{
		ID:             uuid.New(),
		CarID:          in.CarID,
		UserID:         userID,
		PickupDate:     pickup,
		DropoffDate:    dropoff,
		PickupLocation: in.PickupLocation,
		RentalDays:     quote.RentalDays,
		Subtotal:       quote.Subtotal,
		Taxes:          quote.Taxes,
		Total:          quote.Total,
		Status:         models.BookingConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.storeIdempotent(ctx, idemKey, b.ID)

	if s.mailer != nil && userEmail != "" {
		carName := car.Brand + " " + car.Name
		go func() {
			if err := s.mailer.SendBookingConfirmation(userEmail, carName,
				utils.FormatDate(pickup), utils.FormatDate(dropoff), b.Total); err != nil {
				log.Printf("booking %s: confirmation email failed: %v", b.ID, err)
			}
		}()
	}

	return b, nil
}

// ListForUser returns the caller's trips for the given tab ("upcoming" or
// "past"; anything else returns everything)
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, tab string) ([]Trip, error) {
	trips, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tab != "upcoming" && tab != "past" {
		return trips, nil
	}

	now := time.Now()
	filtered := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if isUpcoming(t.Booking, now) == (tab == "upcoming") {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Cancel cancels an upcoming booking owned by the caller
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrNotOwner
	}
	if b.Status == models.BookingCompleted || b.Status == models.BookingCancelled {
		return ErrAlreadyFinished
	}
	return s.repo.UpdateStatus(ctx, bookingID, models.BookingCancelled)
}

func isUpcoming(b models.Booking, now time.Time) bool {
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		return false
	}
	return !b.DropoffDate.Before(now.Truncate(24 * time.Hour))
}

func (s *Service) lookupIdempotent(ctx context.Context, idemKey string) *models.Booking {
	if idemKey == "" || s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, idemKeyPrefix+idemKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("idempotency lookup failed: %v", err)
		}
		return nil
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return nil
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	log.Printf("booking %s: duplicate submit deduplicated by idempotency key", b.ID)
	return b
}

func (s *Service) storeIdempotent(ctx context.Context, idemKey string, bookingID uuid.UUID) {
	if idemKey == "" || s.redis == nil {
		return
	}
	// SetNX so the first submit to finish owns the key. A concurrent submit
	// that raced past the lookup still cannot double-book: the overlap check
	// has already turned it into a conflict.
	if err := s.redis.SetNX(ctx, idemKeyPrefix+idemKey, bookingID.String(), idemKeyTTL).Err(); err != nil {
		log.Printf("idempotency store failed: %v", err)
	}
}

func parseRange(pickupDate, dropoffDate string) (time.Time, time.Time, error) {
	var errs []string
	pickup, err := utils.ParseDate(pickupDate)
	if err != nil {
		errs = append(errs, "pickupDate must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
	}
	dropoff, err := utils.ParseDate(dropoffDate)
	if err != nil {
		errs = append(errs, "dropoffDate must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
	}
	if len(errs) == 0 && dropoff.Before(pickup) {
		errs = append(errs, "dropoffDate cannot be before pickupDate")
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, &ValidationError{Errors: errs}
	}
	return pickup, dropoff, nil
}
