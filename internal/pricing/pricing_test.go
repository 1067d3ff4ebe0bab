package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"DRIVEGO_BACK-END/internal/pricing"
)

func TestCompute_TwoDayRental(t *testing.T) {
	q := pricing.Compute("2024-01-01", "2024-01-03", 100)

	assert.Equal(t, 2, q.RentalDays)
	assert.Equal(t, 200.0, q.Subtotal)
	assert.Equal(t, 20.0, q.Taxes)
	assert.Equal(t, 220.0, q.Total)
}

func TestCompute_SameDayCountsAsOneDay(t *testing.T) {
	q := pricing.Compute("2024-01-01", "2024-01-01", 55)

	assert.Equal(t, 1, q.RentalDays)
	assert.Equal(t, 55.0, q.Subtotal)
}

func TestCompute_DropoffBeforePickupStillPositive(t *testing.T) {
	// Reversed ranges are billed on the absolute difference, never rejected here
	q := pricing.Compute("2024-01-05", "2024-01-01", 100)

	assert.Equal(t, 4, q.RentalDays)
	assert.Equal(t, 400.0, q.Subtotal)
}

func TestCompute_MissingDatesDefaultToOneDay(t *testing.T) {
	cases := []struct {
		name    string
		pickup  string
		dropoff string
	}{
		{"both empty", "", ""},
		{"pickup empty", "", "2024-01-03"},
		{"dropoff empty", "2024-01-01", ""},
		{"unparseable pickup", "not-a-date", "2024-01-03"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := pricing.Compute(tc.pickup, tc.dropoff, 120)
			assert.Equal(t, 1, q.RentalDays)
			assert.Equal(t, 120.0, q.Subtotal)
		})
	}
}

func TestCompute_TaxRoundsHalfUp(t *testing.T) {
	// 45 * 1 day => subtotal 45, 10% = 4.5, rounds to 5
	q := pricing.Compute("2024-01-01", "2024-01-02", 45)

	assert.Equal(t, 45.0, q.Subtotal)
	assert.Equal(t, 5.0, q.Taxes)
	assert.Equal(t, 50.0, q.Total)
}

func TestRentalDays_PartialDaysRoundUp(t *testing.T) {
	// RFC3339 timestamps with a partial final day bill a full extra day
	days := pricing.RentalDays("2024-01-01T10:00:00Z", "2024-01-03T11:00:00Z")

	assert.Equal(t, 3, days)
}

func TestRentalDays_LongRange(t *testing.T) {
	days := pricing.RentalDays("2024-01-01", "2024-01-31")

	assert.Equal(t, 30, days)
}
