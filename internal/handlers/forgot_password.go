package handlers

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"DRIVEGO_BACK-END/internal/config"
	"DRIVEGO_BACK-END/internal/dto"
	"DRIVEGO_BACK-END/internal/middleware"
	"DRIVEGO_BACK-END/internal/utils"
)

const resetCodeTTL = 3 * time.Minute

// ForgotPasswordHandler handles forgot password functionality
type ForgotPasswordHandler struct {
	db     *pgxpool.Pool
	config *config.Config
	email  *utils.EmailService
}

// NewForgotPasswordHandler creates a new ForgotPasswordHandler instance
func NewForgotPasswordHandler(db *pgxpool.Pool, cfg *config.Config, email *utils.EmailService) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{db: db, config: cfg, email: email}
}

// ForgotPassword sends verification code to user's email
// @Summary Request password reset
// @Description Send 6-digit verification code to user's email for password reset
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.ForgotPasswordResponse "Verification code sent successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 429 {object} dto.ErrorResponse "Code already sent"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/forgot-password [post]
func (h *ForgotPasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.ForgotPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if req.Email == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required field", "Email is required")
		return
	}

	// Check if user exists
	var userID uuid.UUID
	err := h.db.QueryRow(context.Background(),
		"SELECT id FROM users WHERE email = $1", req.Email).Scan(&userID)

	if err != nil {
		if err == pgx.ErrNoRows {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
		} else {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		}
		return
	}

	// A still-valid unused code means we are inside the cooldown window
	var expiresAt time.Time
	err = h.db.QueryRow(context.Background(),
		`SELECT expires_at FROM auth_verifications
		 WHERE user_id = $1 AND used = false AND expires_at > NOW()
		 ORDER BY created_at DESC LIMIT 1`,
		userID).Scan(&expiresAt)

	if err == nil {
		timeRemaining := time.Until(expiresAt)
		utils.WriteErrorResponse(w, http.StatusTooManyRequests,
			"Code already sent",
			fmt.Sprintf("Please wait %d seconds before requesting a new code", int(timeRemaining.Seconds())))
		return
	}

	// Generate 6-digit verification code
	code, err := generateVerificationCode(6)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate code", err.Error())
		return
	}

	expiresAt = time.Now().Add(resetCodeTTL)
	_, err = h.db.Exec(context.Background(),
		`INSERT INTO auth_verifications (user_id, email, code, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, req.Email, code, expiresAt, time.Now())

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store verification code", err.Error())
		return
	}

	if h.config.IsEmailConfigured() {
		if err := h.email.SendVerificationCode(req.Email, code); err != nil {
			log.Printf("failed to send verification code to %s: %v", req.Email, err)
		}
	} else {
		// For development without SMTP credentials, log the code
		log.Printf("Verification code for %s: %s (expires in 3 minutes)", req.Email, code)
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ForgotPasswordResponse{
		Message:   "Verification code sent to your email",
		ExpiresIn: int(resetCodeTTL.Seconds()),
	})
}

// VerifyResetCode verifies the emailed code and returns a short-lived reset token
// @Summary Verify password reset code
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.VerifyResetCodeRequest true "Email and code"
// @Success 200 {object} dto.VerifyResetCodeResponse "Reset token"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/verify-reset-code [post]
func (h *ForgotPasswordHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.VerifyResetCodeRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Email and code are required")
		return
	}

	var userID uuid.UUID
	var verificationID int64
	err := h.db.QueryRow(context.Background(),
		`SELECT id, user_id FROM auth_verifications
		 WHERE email = $1 AND code = $2 AND used = false AND expires_at > NOW()
		 ORDER BY created_at DESC LIMIT 1`,
		req.Email, req.Code).Scan(&verificationID, &userID)

	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "Verification code is invalid or expired")
		return
	}

	// Mark code as used
	_, err = h.db.Exec(context.Background(),
		"UPDATE auth_verifications SET used = true WHERE id = $1", verificationID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	resetToken, err := middleware.GenerateResetToken(userID, req.Email, req.Code, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate reset token", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyResetCodeResponse{ResetToken: resetToken})
}

// ResetPassword sets a new password using a valid reset token
// @Summary Reset password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/reset-password [post]
func (h *ForgotPasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.ResetPasswordRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}
	if req.ResetToken == "" || req.NewPassword == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Reset token and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Validation error", "Password must be at least 6 characters")
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, &h.config.JWT)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid token", "Reset token is invalid or expired")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to hash password", err.Error())
		return
	}

	_, err = h.db.Exec(context.Background(),
		"UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2",
		string(hashedPassword), claims.UserID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// generateVerificationCode generates a random numeric code of the given length
func generateVerificationCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += n.String()
	}
	return code, nil
}
