// Package bookingflow drives one booking attempt from form input to a
// confirmed booking: pricing, an advisory availability check, and the final
// submit, with the availability result invalidated on every edit.
package bookingflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"DRIVEGO_BACK-END/internal/pricing"
)

// Status is the availability state of the current draft
type Status int

const (
	StatusNotChecked Status = iota
	StatusChecking
	StatusAvailable
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusNotChecked:
		return "not_checked"
	case StatusChecking:
		return "checking"
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a booking submission
type Outcome int

const (
	OutcomeConfirmed Outcome = iota
	OutcomeConflict
	OutcomeValidationFailed
	OutcomeTransportError
)

var (
	// ErrNotReady is returned when a check is requested before all required
	// fields are filled, or while another check or submit is in flight
	ErrNotReady = errors.New("booking flow: draft not ready")
	// ErrNotAvailable is returned when submit is requested without a fresh
	// available result
	ErrNotAvailable = errors.New("booking flow: availability not confirmed")
	// ErrSubmitInFlight is returned when submit is requested while a previous
	// submit has not yet returned
	ErrSubmitInFlight = errors.New("booking flow: submit already in flight")
	// ErrFlowDone is returned on any action after the booking was confirmed
	ErrFlowDone = errors.New("booking flow: already confirmed")
	// ErrTransport wraps network or server faults from the checker or submitter
	ErrTransport = errors.New("booking flow: transport failure")
)

// Car is the subject of the booking; only identity and rate matter here
type Car struct {
	ID          int64
	Brand       string
	Name        string
	PricePerDay float64
}

// CheckResult is the advisory answer from the availability service
type CheckResult struct {
	Available bool
	Reasons   []string
}

// Checker answers whether a car is free for a date range. A returned error
// means the answer is unknown (transport fault), not that the car is taken.
type Checker interface {
	CheckAvailability(ctx context.Context, carID int64, pickupDate, dropoffDate string) (CheckResult, error)
}

// Request is the payload handed to the Submitter
type Request struct {
	CarID          int64
	PickupDate     string
	DropoffDate    string
	PickupLocation string
	TotalPrice     float64
	IdempotencyKey string
}

// SubmitResult is the interpreted outcome of a booking submission
type SubmitResult struct {
	Outcome   Outcome
	BookingID string
	Errors    []string
}

// Submitter persists a booking. A returned error means transport failure;
// business rejections (conflict, validation) come back in the SubmitResult.
type Submitter interface {
	SubmitBooking(ctx context.Context, req Request) (SubmitResult, error)
}

// Draft is a read-only snapshot of the form state
type Draft struct {
	CarID          int64
	PickupDate     string
	DropoffDate    string
	PickupLocation string
}

// Flow owns the draft for one booking attempt. It is safe for concurrent use;
// a check result that arrives after the user edited any field is discarded.
type Flow struct {
	mu        sync.Mutex
	car       Car
	checker   Checker
	submitter Submitter

	pickupDate     string
	dropoffDate    string
	pickupLocation string

	status     Status
	reasons    []string
	seq        uint64 // bumped on every edit; stale check results are dropped
	submitting bool
	done       bool
	idemKey    string
}

// New creates a flow for booking the given car
func New(car Car, checker Checker, submitter Submitter) *Flow {
	return &Flow{
		car:       car,
		checker:   checker,
		submitter: submitter,
		status:    StatusNotChecked,
		idemKey:   uuid.NewString(),
	}
}

// SetPickupDate updates the pickup date and invalidates any availability result
func (f *Flow) SetPickupDate(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done || f.submitting {
		return
	}
	f.pickupDate = date
	f.invalidateLocked()
}

// SetDropoffDate updates the dropoff date and invalidates any availability result
func (f *Flow) SetDropoffDate(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done || f.submitting {
		return
	}
	f.dropoffDate = date
	f.invalidateLocked()
}

// SetPickupLocation updates the pickup location and invalidates any
// availability result
func (f *Flow) SetPickupLocation(location string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done || f.submitting {
		return
	}
	f.pickupLocation = location
	f.invalidateLocked()
}

// SetLocationPick applies a map-picker selection. Only the resolved address is
// kept; coordinates stay with the picker.
func (f *Flow) SetLocationPick(lat, lng float64, address string) {
	_ = lat
	_ = lng
	f.SetPickupLocation(address)
}

// invalidateLocked resets the availability state after an edit. A fresh
// idempotency key is taken because the next submit describes a different trip.
func (f *Flow) invalidateLocked() {
	f.seq++
	f.status = StatusNotChecked
	f.reasons = nil
	f.idemKey = uuid.NewString()
}

// Draft returns a snapshot of the current form fields
func (f *Flow) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Draft{
		CarID:          f.car.ID,
		PickupDate:     f.pickupDate,
		DropoffDate:    f.dropoffDate,
		PickupLocation: f.pickupLocation,
	}
}

// Status returns the current availability status and, when unavailable, the
// reasons reported by the server
func (f *Flow) Status() (Status, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reasons := make([]string, len(f.reasons))
	copy(reasons, f.reasons)
	return f.status, reasons
}

// Quote prices the current draft
func (f *Flow) Quote() pricing.Quote {
	f.mu.Lock()
	pickup, dropoff := f.pickupDate, f.dropoffDate
	rate := f.car.PricePerDay
	f.mu.Unlock()
	return pricing.Compute(pickup, dropoff, rate)
}

// Done reports whether the booking was confirmed and the flow is over
func (f *Flow) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// CanCheck reports whether the check-availability action is enabled
func (f *Flow) CanCheck() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canCheckLocked()
}

func (f *Flow) canCheckLocked() bool {
	return !f.done && !f.submitting &&
		f.status != StatusChecking &&
		f.pickupDate != "" && f.dropoffDate != "" && f.pickupLocation != ""
}

// CanSubmit reports whether the confirm-booking action is enabled. It is true
// only on a fresh available result.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status == StatusAvailable && !f.submitting && !f.done
}

// Check runs the availability checker for the current draft. The checker runs
// without the lock held; if any field was edited in the meantime the response
// is stale and gets discarded. A transport fault resets the status so the user
// can retry, and is reported via ErrTransport.
func (f *Flow) Check(ctx context.Context) (Status, error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return f.status, ErrFlowDone
	}
	if !f.canCheckLocked() {
		status := f.status
		f.mu.Unlock()
		return status, ErrNotReady
	}
	seq := f.seq
	pickup, dropoff := f.pickupDate, f.dropoffDate
	f.status = StatusChecking
	f.mu.Unlock()

	res, err := f.checker.CheckAvailability(ctx, f.car.ID, pickup, dropoff)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seq != seq {
		// The draft changed while the request was in flight; the edit already
		// reset the status, so this answer no longer applies.
		return f.status, nil
	}

	if err != nil {
		f.status = StatusNotChecked
		return f.status, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if res.Available {
		f.status = StatusAvailable
		f.reasons = nil
	} else {
		f.status = StatusUnavailable
		f.reasons = res.Reasons
	}
	return f.status, nil
}

// Submit confirms the booking. It is gated on a fresh available result and on
// no submit being in flight. Any failure resets the status to not-checked so
// the user must re-verify availability before trying again; only a confirmed
// outcome ends the flow.
func (f *Flow) Submit(ctx context.Context) (SubmitResult, error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return SubmitResult{}, ErrFlowDone
	}
	if f.submitting {
		f.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}
	if f.status != StatusAvailable {
		f.mu.Unlock()
		return SubmitResult{}, ErrNotAvailable
	}
	f.submitting = true
	req := Request{
		CarID:          f.car.ID,
		PickupDate:     f.pickupDate,
		DropoffDate:    f.dropoffDate,
		PickupLocation: f.pickupLocation,
		TotalPrice:     pricing.Compute(f.pickupDate, f.dropoffDate, f.car.PricePerDay).Total,
		IdempotencyKey: f.idemKey,
	}
	f.mu.Unlock()

	res, err := f.submitter.SubmitBooking(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		f.status = StatusNotChecked
		return SubmitResult{Outcome: OutcomeTransportError}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	switch res.Outcome {
	case OutcomeConfirmed:
		f.done = true
	default:
		// Conflict, validation failure or transport fault: the availability
		// answer can no longer be trusted, force a re-check.
		f.status = StatusNotChecked
		f.reasons = nil
	}
	return res, nil
}
