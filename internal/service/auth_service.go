package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrilocal/internal/domain"
	"agrilocal/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidRole        = errors.New("user type must be farmer or buyer")
)

// RegisterInput carries the profile attributes collected at signup.
type RegisterInput struct {
	Email           string
	Password        string
	UserType        domain.Role
	FirstName       string
	LastName        string
	Phone           string
	LocationAddress string
	LocationPinCode string
	Latitude        *float64
	Longitude       *float64
	FarmName        string
	FarmDescription string
}

// ProfileUpdate carries the mutable contact, location and farm fields.
type ProfileUpdate struct {
	FirstName       string
	LastName        string
	Phone           string
	LocationAddress string
	LocationPinCode string
	Latitude        *float64
	Longitude       *float64
	FarmName        string
	FarmDescription string
}

// AuthService defines the interface for the auth gateway
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, profile *domain.Profile, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetProfileByID(ctx context.Context, profileID uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profileID uuid.UUID, update ProfileUpdate) (*domain.Profile, error)
}

// Claims represents the JWT claims
type Claims struct {
	ProfileID uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	profileRepo repository.ProfileRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
) AuthService {
	return &authService{
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
	}
}

// Register creates a new profile with a hashed password and the signup
// attributes. Farm fields are only persisted for farmers.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.Profile, error) {
	if !input.UserType.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.profileRepo.FindByEmail(ctx, input.Email)
	if err != nil && err != repository.ErrProfileNotFound {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrProfileAlreadyExists
	}

	hashedPassword, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &domain.Profile{
		ID:              uuid.New(),
		Email:           input.Email,
		PasswordHash:    hashedPassword,
		UserType:        input.UserType,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           input.Phone,
		LocationAddress: input.LocationAddress,
		LocationPinCode: input.LocationPinCode,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if input.UserType == domain.RoleFarmer {
		profile.FarmName = input.FarmName
		profile.FarmDescription = input.FarmDescription
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// Login authenticates a profile and returns JWT tokens
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, profile *domain.Profile, err error) {
	profile, err = s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := s.verifyPassword(profile.PasswordHash, password); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(profile)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, profile)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, profile, nil
}

// Logout invalidates the refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if err == repository.ErrRefreshTokenNotFound {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrRefreshTokenNotFound || err == repository.ErrRefreshTokenRevoked {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	profile, err := s.profileRepo.FindByID(ctx, refreshToken.ProfileID)
	if err != nil {
		return "", fmt.Errorf("failed to find profile: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(profile)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetProfileByID retrieves a profile by ID
func (s *authService) GetProfileByID(ctx context.Context, profileID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies a profile update and returns the stored result
func (s *authService) UpdateProfile(ctx context.Context, profileID uuid.UUID, update ProfileUpdate) (*domain.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.FirstName = update.FirstName
	profile.LastName = update.LastName
	profile.Phone = update.Phone
	profile.LocationAddress = update.LocationAddress
	profile.LocationPinCode = update.LocationPinCode
	profile.Latitude = update.Latitude
	profile.Longitude = update.Longitude
	if profile.UserType == domain.RoleFarmer {
		profile.FarmName = update.FarmName
		profile.FarmDescription = update.FarmDescription
	}
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// hashPassword hashes a password using bcrypt
func (s *authService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// verifyPassword verifies a password against a bcrypt hash
func (s *authService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with profile ID and role claims
func (s *authService) generateAccessToken(profile *domain.Profile) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		ProfileID: profile.ID,
		Role:      string(profile.UserType),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *authService) generateRefreshToken(ctx context.Context, profile *domain.Profile) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiration),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
