package dto

// CheckAvailabilityRequest represents the request payload for an availability check
type CheckAvailabilityRequest struct {
	CarID       int64  `json:"carId" validate:"required"`
	PickupDate  string `json:"pickupDate" validate:"required"`
	DropoffDate string `json:"dropoffDate" validate:"required"`
}

// CheckAvailabilityResponse represents the advisory availability answer
type CheckAvailabilityResponse struct {
	Available bool     `json:"available"`
	Errors    []string `json:"errors,omitempty"`
}

// BookFormData carries the booking form fields submitted by the client
type BookFormData struct {
	CarID          int64   `json:"carId" validate:"required"`
	PickupDate     string  `json:"pickupDate" validate:"required"`
	DropoffDate    string  `json:"dropoffDate" validate:"required"`
	PickupLocation string  `json:"pickupLocation" validate:"required"`
	TotalPrice     float64 `json:"totalPrice"`
}

// BookRequest represents the request payload for creating a booking
type BookRequest struct {
	FormData BookFormData `json:"formData"`
}

// BookResponse represents a successful booking creation
type BookResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"booking_id"`
}

// BookingResponse represents a booking in trip-history responses
type BookingResponse struct {
	ID             string  `json:"id"`
	CarID          int64   `json:"car_id"`
	CarBrand       string  `json:"car_brand"`
	CarName        string  `json:"car_name"`
	CarImage       string  `json:"car_image"`
	PickupDate     string  `json:"pickup_date"`
	DropoffDate    string  `json:"dropoff_date"`
	PickupLocation string  `json:"pickup_location"`
	RentalDays     int     `json:"rental_days"`
	Subtotal       float64 `json:"subtotal"`
	Taxes          float64 `json:"taxes"`
	Total          float64 `json:"total"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// BookingListResponse represents the user's trips, partitioned by tab
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Tab      string            `json:"tab"`
}
