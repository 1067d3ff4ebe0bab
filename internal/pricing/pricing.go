// Package pricing computes rental quotes from a date range and a daily rate.
package pricing

import (
	"math"

	"DRIVEGO_BACK-END/internal/utils"
)

// TaxRate is the flat tax applied on the rental subtotal
const TaxRate = 0.10

// Quote is the price breakdown shown before a booking is confirmed
type Quote struct {
	RentalDays int     `json:"rental_days"`
	Subtotal   float64 `json:"subtotal"`
	Taxes      float64 `json:"taxes"`
	Total      float64 `json:"total"`
}

// Compute returns the quote for renting at pricePerDay between pickup and
// dropoff (ISO 8601 dates). While either date is missing or unparseable the
// quote is priced for a single day so the form can always render a number.
//
// The day count uses the absolute difference between the two dates: a dropoff
// earlier than pickup still yields a positive count. Order validation is the
// server's job, not the calculator's.
func Compute(pickupDate, dropoffDate string, pricePerDay float64) Quote {
	days := RentalDays(pickupDate, dropoffDate)
	subtotal := pricePerDay * float64(days)
	taxes := math.Round(subtotal * TaxRate)
	return Quote{
		RentalDays: days,
		Subtotal:   subtotal,
		Taxes:      taxes,
		Total:      subtotal + taxes,
	}
}

// RentalDays returns the billable day count for the given range, minimum 1.
// Partial days round up.
func RentalDays(pickupDate, dropoffDate string) int {
	if pickupDate == "" || dropoffDate == "" {
		return 1
	}

	pickup, err := utils.ParseDate(pickupDate)
	if err != nil {
		return 1
	}
	dropoff, err := utils.ParseDate(dropoffDate)
	if err != nil {
		return 1
	}

	diff := dropoff.Sub(pickup)
	if diff < 0 {
		diff = -diff
	}

	days := int(math.Ceil(diff.Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}
