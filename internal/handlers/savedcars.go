package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"DRIVEGO_BACK-END/internal/dto"
	"DRIVEGO_BACK-END/internal/models"
	"DRIVEGO_BACK-END/internal/utils"
)

// SavedCarsHandler manages the user's bookmarked cars
type SavedCarsHandler struct {
	db *pgxpool.Pool
}

// NewSavedCarsHandler creates a new SavedCarsHandler
func NewSavedCarsHandler(db *pgxpool.Pool) *SavedCarsHandler {
	return &SavedCarsHandler{db: db}
}

// SavedCars dispatches GET and POST for /api/saved
func (h *SavedCarsHandler) SavedCars(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListSavedCars(w, r)
	case http.MethodPost:
		h.SaveCar(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListSavedCars returns the caller's saved cars
// @Summary List saved cars
// @Tags saved
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SavedCarListResponse "Saved cars"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/saved [get]
func (h *SavedCarsHandler) ListSavedCars(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	rows, err := h.db.Query(context.Background(),
		`SELECT c.id, c.brand, c.name, c.type, c.price_per_day, c.fuel_type, c.transmission,
                c.image_url, c.rating, c.description, s.saved_at
           FROM saved_cars s
           JOIN cars c ON c.id = s.car_id
          WHERE s.user_id = $1
          ORDER BY s.saved_at DESC`, userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	saved := make([]dto.SavedCarResponse, 0)
	for rows.Next() {
		var c models.Car
		var savedAt time.Time
		if err := rows.Scan(&c.ID, &c.Brand, &c.Name, &c.Type, &c.PricePerDay, &c.FuelType,
			&c.Transmission, &c.ImageURL, &c.Rating, &c.Description, &savedAt); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		saved = append(saved, dto.SavedCarResponse{
			Car:       toCarResponse(c),
			SavedDate: utils.FormatDate(savedAt),
		})
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.SavedCarListResponse{SavedCars: saved})
}

// SaveCar bookmarks a car for the caller
// @Summary Save a car
// @Tags saved
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveCarRequest true "Car to save"
// @Success 201 {object} map[string]interface{} "Car saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Car not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/saved [post]
func (h *SavedCarsHandler) SaveCar(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var req dto.SaveCarRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if req.CarID <= 0 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required field", "car_id is required")
		return
	}

	var exists int64
	if err := h.db.QueryRow(context.Background(),
		"SELECT id FROM cars WHERE id = $1", req.CarID).Scan(&exists); err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Car not found")
		return
	}

	// Saving an already-saved car is a no-op
	_, err := h.db.Exec(context.Background(),
		`INSERT INTO saved_cars (user_id, car_id, saved_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, car_id) DO NOTHING`, userID, req.CarID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Car saved",
	})
}

// RemoveSavedCar removes a car from the caller's saved list
// @Summary Remove a saved car
// @Tags saved
// @Produce json
// @Security BearerAuth
// @Param car_id path int true "Car ID"
// @Success 200 {object} map[string]interface{} "Car removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid car id"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Car was not saved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/saved/{car_id} [delete]
func (h *SavedCarsHandler) RemoveSavedCar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/saved/")
	carID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid car id", "car_id must be an integer")
		return
	}

	tag, err := h.db.Exec(context.Background(),
		"DELETE FROM saved_cars WHERE user_id = $1 AND car_id = $2", userID, carID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Car was not in the saved list")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Car removed from saved list",
	})
}
