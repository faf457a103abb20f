package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which side of the marketplace a profile belongs to.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// Valid reports whether the role is one of the known marketplace roles.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleBuyer
}

// Profile represents a registered user: role, contact details, location and,
// for farmers, the farm metadata shown alongside their listings.
type Profile struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	UserType        Role      `json:"user_type" db:"user_type"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	Phone           string    `json:"phone" db:"phone"`
	LocationAddress string    `json:"location_address" db:"location_address"`
	LocationPinCode string    `json:"location_pin_code" db:"location_pin_code"`
	Latitude        *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64  `json:"longitude,omitempty" db:"longitude"`
	FarmName        string    `json:"farm_name,omitempty" db:"farm_name"`
	FarmDescription string    `json:"farm_description,omitempty" db:"farm_description"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName is the farmer name rendered on product cards.
func (p *Profile) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// RefreshToken represents a persisted, revocable refresh token.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProfileID uuid.UUID `json:"profile_id" db:"profile_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
