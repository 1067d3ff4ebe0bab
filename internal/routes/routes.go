package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"DRIVEGO_BACK-END/internal/config"
	"DRIVEGO_BACK-END/internal/handlers"
	"DRIVEGO_BACK-END/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	googleAuthHandler *handlers.GoogleAuthHandler,
	forgotPasswordHandler *handlers.ForgotPasswordHandler,
	carsHandler *handlers.CarsHandler,
	bookingsHandler *handlers.BookingsHandler,
	savedCarsHandler *handlers.SavedCarsHandler,
	healthHandler *handlers.HealthHandler,
) {
	jwtCfg := &cfg.JWT

	// Health check routes
	http.HandleFunc("/healthz", healthHandler.HealthCheck)
	http.HandleFunc("/livez", healthHandler.LivenessCheck)
	http.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", authHandler.Register)
	http.HandleFunc("/api/auth/login", authHandler.Login)
	http.HandleFunc("/api/auth/profile", middleware.AuthMiddleware(authHandler.GetProfile, jwtCfg))

	// Google OAuth routes
	http.HandleFunc("/api/auth/google/login", googleAuthHandler.GoogleLogin)
	http.HandleFunc("/api/auth/google/callback", googleAuthHandler.GoogleCallback)

	// Password reset routes
	http.HandleFunc("/api/auth/forgot-password", forgotPasswordHandler.ForgotPassword)
	http.HandleFunc("/api/auth/verify-reset-code", forgotPasswordHandler.VerifyResetCode)
	http.HandleFunc("/api/auth/reset-password", forgotPasswordHandler.ResetPassword)

	// Catalog routes
	http.HandleFunc("/api/cars", carsHandler.Cars)
	http.HandleFunc("/api/cars/", carsHandler.Cars)

	// Booking routes
	http.HandleFunc("/api/check-availability", middleware.AuthMiddleware(bookingsHandler.CheckAvailability, jwtCfg))
	http.HandleFunc("/api/book", middleware.AuthMiddleware(bookingsHandler.Book, jwtCfg))
	http.HandleFunc("/api/bookings/user", middleware.AuthMiddleware(bookingsHandler.ListUserBookings, jwtCfg))
	http.HandleFunc("/api/bookings/", middleware.AuthMiddleware(bookingsHandler.CancelBooking, jwtCfg))

	// Saved cars routes
	http.HandleFunc("/api/saved", middleware.AuthMiddleware(savedCarsHandler.SavedCars, jwtCfg))
	http.HandleFunc("/api/saved/", middleware.AuthMiddleware(savedCarsHandler.RemoveSavedCar, jwtCfg))

	// Swagger documentation
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("DriveGo backend is running."))
}
