package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"DRIVEGO_BACK-END/internal/dto"
	"DRIVEGO_BACK-END/internal/models"
	"DRIVEGO_BACK-END/internal/utils"
)

const (
	carListCacheKey = "cars:list:default"
	carListCacheTTL = 5 * time.Minute
)

// CarsHandler manages catalog endpoints
type CarsHandler struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewCarsHandler creates a new CarsHandler
func NewCarsHandler(db *pgxpool.Pool, redisClient *redis.Client) *CarsHandler {
	return &CarsHandler{db: db, redis: redisClient}
}

// Cars dispatches by path for /api/cars and /api/cars/{id}
func (h *CarsHandler) Cars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/cars/") && len(r.URL.Path) > len("/api/cars/") {
		h.CarDetail(w, r)
		return
	}
	h.ListCars(w, r)
}

// ListCars handles GET /api/cars with filters and pagination
// @Summary List catalog cars
// @Tags cars
// @Produce json
// @Param type query string false "comma-separated car types (SUV,Sedan,...)"
// @Param fuel_type query string false "comma-separated fuel types"
// @Param transmission query string false "comma-separated transmissions"
// @Param min_rating query number false "minimum rating"
// @Param price_min query number false "minimum price per day"
// @Param price_max query number false "maximum price per day"
// @Param search query string false "matches brand or name"
// @Param limit query int false "items per page"
// @Param offset query int false "offset"
// @Success 200 {object} dto.CarListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/cars [get]
func (h *CarsHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 9
	offset := 0
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 100 {
				n = 100
			}
			limit = n
		}
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	// Build WHERE clause from the browse filters
	where := []string{"TRUE"}
	args := []interface{}{}
	addIn := func(column, raw string) {
		values := []string{}
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			args = append(args, values)
			where = append(where, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
		}
	}
	addIn("type", q.Get("type"))
	addIn("fuel_type", q.Get("fuel_type"))
	addIn("transmission", q.Get("transmission"))

	if v := strings.TrimSpace(q.Get("min_rating")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			args = append(args, f)
			where = append(where, fmt.Sprintf("rating >= $%d", len(args)))
		}
	}
	if v := strings.TrimSpace(q.Get("price_min")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			args = append(args, f)
			where = append(where, fmt.Sprintf("price_per_day >= $%d", len(args)))
		}
	}
	if v := strings.TrimSpace(q.Get("price_max")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			args = append(args, f)
			where = append(where, fmt.Sprintf("price_per_day <= $%d", len(args)))
		}
	}
	if v := strings.TrimSpace(q.Get("search")); v != "" {
		args = append(args, "%"+v+"%")
		where = append(where, fmt.Sprintf("(brand ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}

	// The unfiltered first page is the landing query; serve it from cache
	cacheable := len(args) == 0 && offset == 0 && limit == 9
	if cacheable && h.redis != nil {
		if cached, err := h.redis.Get(r.Context(), carListCacheKey).Result(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := h.db.QueryRow(context.Background(),
		"SELECT COUNT(1) FROM cars WHERE "+whereSQL, args...).Scan(&total); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	pageArgs := append(args, limit, offset)
	rows, err := h.db.Query(context.Background(),
		fmt.Sprintf(`SELECT id, brand, name, type, price_per_day, fuel_type, transmission, image_url, rating, description
           FROM cars
          WHERE %s
          ORDER BY rating DESC, id
          LIMIT $%d OFFSET $%d`, whereSQL, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}
	defer rows.Close()

	items := make([]dto.CarResponse, 0, limit)
	for rows.Next() {
		var c models.Car
		if err := rows.Scan(&c.ID, &c.Brand, &c.Name, &c.Type, &c.PricePerDay, &c.FuelType,
			&c.Transmission, &c.ImageURL, &c.Rating, &c.Description); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		items = append(items, toCarResponse(c))
	}
	if err := rows.Err(); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	resp := dto.CarListResponse{
		Cars: items,
		Pagination: dto.Pagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}

	if cacheable && h.redis != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := h.redis.Set(r.Context(), carListCacheKey, payload, carListCacheTTL).Err(); err != nil {
				log.Printf("car list cache store failed: %v", err)
			}
		}
	}

	utils.WriteJSONResponse(w, http.StatusOK, resp)
}

// CarDetail handles GET /api/cars/{id}
// @Summary Get car detail
// @Tags cars
// @Produce json
// @Param id path int true "Car ID"
// @Success 200 {object} dto.CarResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/cars/{id} [get]
func (h *CarsHandler) CarDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/cars/")
	carID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid car id", "id must be an integer")
		return
	}

	var c models.Car
	err = h.db.QueryRow(context.Background(),
		`SELECT id, brand, name, type, price_per_day, fuel_type, transmission, image_url, rating, description
           FROM cars WHERE id = $1`, carID).Scan(
		&c.ID, &c.Brand, &c.Name, &c.Type, &c.PricePerDay, &c.FuelType, &c.Transmission,
		&c.ImageURL, &c.Rating, &c.Description)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not Found", "Car not found")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toCarResponse(c))
}

func toCarResponse(c models.Car) dto.CarResponse {
	return dto.CarResponse{
		ID:           c.ID,
		Brand:        c.Brand,
		Name:         c.Name,
		Type:         c.Type,
		PricePerDay:  c.PricePerDay,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		Image:        c.ImageURL,
		Rating:       c.Rating,
		Description:  c.Description,
	}
}
