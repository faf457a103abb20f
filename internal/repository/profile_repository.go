package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"agrilocal/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile with this email already exists")
)

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, password_hash, user_type, first_name, last_name, phone,
		location_address, location_pin_code, latitude, longitude,
		farm_name, farm_description, created_at, updated_at`

// Create inserts a new profile into the database using parameterized queries
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.UserType,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		profile.LocationAddress,
		profile.LocationPinCode,
		profile.Latitude,
		profile.Longitude,
		profile.FarmName,
		profile.FarmDescription,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation on email (SQLSTATE 23505)
		if strings.Contains(err.Error(), "profiles_email_key") {
			return ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *profileRepository) scanProfile(row *sql.Row) (*domain.Profile, error) {
	profile := &domain.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&profile.UserType,
		&profile.FirstName,
		&profile.LastName,
		&profile.Phone,
		&profile.LocationAddress,
		&profile.LocationPinCode,
		&profile.Latitude,
		&profile.Longitude,
		&profile.FarmName,
		&profile.FarmDescription,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return profile, nil
}

// FindByEmail retrieves a profile by email using parameterized queries
func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, email))
}

// FindByID retrieves a profile by ID using parameterized queries
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// Update persists the mutable contact, location and farm fields of a profile
func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2, last_name = $3, phone = $4,
		    location_address = $5, location_pin_code = $6,
		    latitude = $7, longitude = $8,
		    farm_name = $9, farm_description = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		profile.LocationAddress,
		profile.LocationPinCode,
		profile.Latitude,
		profile.Longitude,
		profile.FarmName,
		profile.FarmDescription,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
