package transport

import (
	"encoding/json"
	"net/http"

	"agrilocal/internal/domain"
	"agrilocal/internal/middleware"
	"agrilocal/internal/repository"
	"agrilocal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the signup request payload
type RegisterRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	UserType        string   `json:"user_type" validate:"required,oneof=farmer buyer"`
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Phone           string   `json:"phone" validate:"required"`
	LocationAddress string   `json:"location_address" validate:"required"`
	LocationPinCode string   `json:"location_pin_code" validate:"required"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	FarmName        string   `json:"farm_name,omitempty"`
	FarmDescription string   `json:"farm_description,omitempty"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Phone           string   `json:"phone" validate:"required"`
	LocationAddress string   `json:"location_address" validate:"required"`
	LocationPinCode string   `json:"location_pin_code" validate:"required"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	FarmName        string   `json:"farm_name,omitempty"`
	FarmDescription string   `json:"farm_description,omitempty"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	Profile      ProfileView `json:"profile"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// ProfileView represents profile data returned to clients
type ProfileView struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	UserType        string   `json:"user_type"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Phone           string   `json:"phone"`
	LocationAddress string   `json:"location_address"`
	LocationPinCode string   `json:"location_pin_code"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	FarmName        string   `json:"farm_name,omitempty"`
	FarmDescription string   `json:"farm_description,omitempty"`
}

func profileView(profile *domain.Profile) ProfileView {
	return ProfileView{
		ID:              profile.ID.String(),
		Email:           profile.Email,
		UserType:        string(profile.UserType),
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		Phone:           profile.Phone,
		LocationAddress: profile.LocationAddress,
		LocationPinCode: profile.LocationPinCode,
		Latitude:        profile.Latitude,
		Longitude:       profile.Longitude,
		FarmName:        profile.FarmName,
		FarmDescription: profile.FarmDescription,
	}
}

// AuthHandler handles HTTP requests for the auth gateway
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
		})
	})
}

// Register handles profile signup
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		// Check if it's a validation error
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		// JSON decode error
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Call service
	profile, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		UserType:        domain.Role(req.UserType),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		LocationAddress: req.LocationAddress,
		LocationPinCode: req.LocationPinCode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		FarmName:        req.FarmName,
		FarmDescription: req.FarmDescription,
	})
	if err != nil {
		h.logger.Error("Registration failed", zap.Error(err))

		// Check for specific errors
		if err == repository.ErrProfileAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "profile with this email already exists")
			return
		}
		if err == service.ErrInvalidRole {
			middleware.RespondWithError(w, http.StatusBadRequest, "user type must be farmer or buyer")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	h.logger.Info("Profile registered successfully", zap.String("profile_id", profile.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, profileView(profile))
}

// Login handles profile authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		// Check if it's a validation error
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Call service
	accessToken, refreshToken, profile, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		// Check for invalid credentials
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	// Return tokens and profile
	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      profileView(profile),
	}

	h.logger.Info("Profile logged in successfully", zap.String("profile_id", profile.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Logout handles profile logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	// Decode request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Logout decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Call service
	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	h.logger.Info("Profile logged out successfully")
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Refresh token validation failed", zap.Error(err))

		// Check if it's a validation error
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Call service
	newAccessToken, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Error(err))

		// Check for specific errors
		if err == service.ErrInvalidToken {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		if err == service.ErrTokenExpired {
			middleware.RespondWithError(w, http.StatusUnauthorized, "refresh token expired")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	// Return new access token
	response := RefreshResponse{
		AccessToken: newAccessToken,
	}

	h.logger.Info("Token refreshed successfully")
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProfile handles getting the authenticated profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := authenticatedProfileID(w, r, h.logger)
	if !ok {
		return
	}

	// Get profile from service
	profile, err := h.authService.GetProfileByID(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to get profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, profileView(profile))
}

// UpdateProfile handles profile edits from the profile tab
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := authenticatedProfileID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.authService.UpdateProfile(r.Context(), profileID, service.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		LocationAddress: req.LocationAddress,
		LocationPinCode: req.LocationPinCode,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		FarmName:        req.FarmName,
		FarmDescription: req.FarmDescription,
	})
	if err != nil {
		h.logger.Error("Profile update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.logger.Info("Profile updated successfully", zap.String("profile_id", profile.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, profileView(profile))
}

// authenticatedProfileID extracts and parses the profile ID placed in the
// request context by the auth middleware. It writes the error response
// itself so handlers can bail out with a single check.
func authenticatedProfileID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	profileIDStr, ok := middleware.GetProfileID(r.Context())
	if !ok {
		logger.Error("Profile ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	profileID, err := uuid.Parse(profileIDStr)
	if err != nil {
		logger.Error("Invalid profile ID format", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid profile ID")
		return uuid.Nil, false
	}

	return profileID, true
}
