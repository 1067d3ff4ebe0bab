package dto

// CarResponse represents a catalog car in API responses
type CarResponse struct {
	ID           int64   `json:"id"`
	Brand        string  `json:"brand"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	PricePerDay  float64 `json:"price_per_day"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	Image        string  `json:"image"`
	Rating       float64 `json:"rating"`
	Description  string  `json:"description"`
}

// CarListResponse represents a filtered, paginated page of the catalog
type CarListResponse struct {
	Cars       []CarResponse `json:"cars"`
	Pagination Pagination    `json:"pagination"`
}

// Pagination carries paging metadata for list responses
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// SavedCarResponse represents a bookmarked car with the date it was saved
type SavedCarResponse struct {
	Car       CarResponse `json:"car"`
	SavedDate string      `json:"savedDate"`
}

// SavedCarListResponse represents the user's saved-cars list
type SavedCarListResponse struct {
	SavedCars []SavedCarResponse `json:"saved_cars"`
}

// SaveCarRequest represents the request payload to bookmark a car
type SaveCarRequest struct {
	CarID int64 `json:"car_id" validate:"required"`
}
