package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"DRIVEGO_BACK-END/internal/booking"
	"DRIVEGO_BACK-END/internal/dto"
	"DRIVEGO_BACK-END/internal/utils"
)

// BookingsHandler exposes the booking service over HTTP
type BookingsHandler struct {
	service *booking.Service
}

// NewBookingsHandler creates a new BookingsHandler
func NewBookingsHandler(service *booking.Service) *BookingsHandler {
	return &BookingsHandler{service: service}
}

// CheckAvailability answers whether a car is free for a date range
// @Summary Check car availability
// @Description Advisory check for a car and date range; nothing is reserved
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckAvailabilityRequest true "Car and date range"
// @Success 200 {object} dto.CheckAvailabilityResponse "Availability answer"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Car not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/check-availability [post]
func (h *BookingsHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.CheckAvailabilityRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	outcome, err := h.service.CheckAvailability(r.Context(), req.CarID, req.PickupDate, req.DropoffDate)
	if err != nil {
		if verr, ok := booking.AsValidationError(err); ok {
			utils.WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Validation failed",
				Errors: verr.Errors,
			})
			return
		}
		if errors.Is(err, booking.ErrCarNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Car not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CheckAvailabilityResponse{
		Available: outcome.Available,
		Errors:    outcome.Reasons,
	})
}

// Book creates a booking
// @Summary Book a car
// @Description Create a booking after a final conflict check. Retries with the
// @Description same Idempotency-Key header return the original booking.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client-generated key deduplicating retries"
// @Param request body dto.BookRequest true "Booking form data"
// @Success 201 {object} dto.BookResponse "Booking created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Car not found"
// @Failure 409 {object} dto.ErrorResponse "Car already booked for the range"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/book [post]
func (h *BookingsHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}
	userEmail, _ := utils.GetEmailFromContext(r.Context())

	var req dto.BookRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")

	b, err := h.service.Create(r.Context(), userID, userEmail, booking.CreateInput{
		CarID:          req.FormData.CarID,
		PickupDate:     req.FormData.PickupDate,
		DropoffDate:    req.FormData.DropoffDate,
		PickupLocation: req.FormData.PickupLocation,
	}, idemKey)

	if err != nil {
		if verr, ok := booking.AsValidationError(err); ok {
			utils.WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:  "Validation failed",
				Errors: verr.Errors,
			})
			return
		}
		if errors.Is(err, booking.ErrConflict) {
			utils.WriteErrorResponse(w, http.StatusConflict, "Booking conflict", "car was just booked by another user")
			return
		}
		if errors.Is(err, booking.ErrCarNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Car not found")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to create booking", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.BookResponse{
		Success:   true,
		BookingID: b.ID.String(),
	})
}

// ListUserBookings returns the caller's trip history
// @Summary List user bookings
// @Description Get the authenticated user's bookings, optionally filtered by tab
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param tab query string false "upcoming or past"
// @Success 200 {object} dto.BookingListResponse "User bookings"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/bookings/user [get]
func (h *BookingsHandler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	tab := r.URL.Query().Get("tab")

	trips, err := h.service.ListForUser(r.Context(), userID, tab)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	bookings := make([]dto.BookingResponse, 0, len(trips))
	for _, t := range trips {
		bookings = append(bookings, toBookingResponse(t))
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.BookingListResponse{
		Bookings: bookings,
		Tab:      tab,
	})
}

// CancelBooking cancels one of the caller's bookings
// @Summary Cancel a booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{} "Booking cancelled"
// @Failure 400 {object} dto.ErrorResponse "Invalid booking id or already finished"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the booking owner"
// @Failure 404 {object} dto.ErrorResponse "Booking not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/bookings/{id} [delete]
func (h *BookingsHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
	bookingID, err := uuid.Parse(idStr)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid booking id", "id must be a UUID")
		return
	}

	err = h.service.Cancel(r.Context(), userID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Booking not found")
		case errors.Is(err, booking.ErrNotOwner):
			utils.WriteErrorResponse(w, http.StatusForbidden, "Forbidden", "Booking belongs to another user")
		case errors.Is(err, booking.ErrAlreadyFinished):
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "Booking is already completed or cancelled")
		default:
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		}
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Booking cancelled",
	})
}

func toBookingResponse(t booking.Trip) dto.BookingResponse {
	b := t.Booking
	return dto.BookingResponse{
		ID:             b.ID.String(),
		CarID:          b.CarID,
		CarBrand:       t.Car.Brand,
		CarName:        t.Car.Name,
		CarImage:       t.Car.ImageURL,
		PickupDate:     utils.FormatDate(b.PickupDate),
		DropoffDate:    utils.FormatDate(b.DropoffDate),
		PickupLocation: b.PickupLocation,
		RentalDays:     b.RentalDays,
		Subtotal:       b.Subtotal,
		Taxes:          b.Taxes,
		Total:          b.Total,
		Status:         b.Status,
		CreatedAt:      utils.FormatTimestamp(b.CreatedAt),
	}
}
