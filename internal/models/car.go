package models

// Car represents a rentable car in the catalog
type Car struct {
	ID           int64   `json:"id" db:"id"`
	Brand        string  `json:"brand" db:"brand"`
	Name         string  `json:"name" db:"name"`
	Type         string  `json:"type" db:"type"`
	PricePerDay  float64 `json:"price_per_day" db:"price_per_day"`
	FuelType     string  `json:"fuel_type" db:"fuel_type"`
	Transmission string  `json:"transmission" db:"transmission"`
	ImageURL     string  `json:"image" db:"image_url"`
	Rating       float64 `json:"rating" db:"rating"`
	Description  string  `json:"description" db:"description"`
}
