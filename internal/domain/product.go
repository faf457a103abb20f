package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is the fixed produce classification shown in the catalog filters.
type Category string

const (
	CategoryVegetables  Category = "Vegetables"
	CategoryFruits      Category = "Fruits"
	CategoryLeafyGreens Category = "Leafy Greens"
	CategoryHerbs       Category = "Herbs"
	CategoryDairy       Category = "Dairy"
	CategoryGrains      Category = "Grains"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryVegetables,
		CategoryFruits,
		CategoryLeafyGreens,
		CategoryHerbs,
		CategoryDairy,
		CategoryGrains,
	}
}

// Valid reports whether the category is one of the fixed enumeration values.
func (c Category) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategoryLeafyGreens,
		CategoryHerbs, CategoryDairy, CategoryGrains:
		return true
	}
	return false
}

// Unit is the unit of measure a product is priced and sold in.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitGrams  Unit = "grams"
	UnitPieces Unit = "pieces"
	UnitLiters Unit = "liters"
	UnitDozen  Unit = "dozen"
)

// Valid reports whether the unit is one of the supported units of measure.
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGrams, UnitPieces, UnitLiters, UnitDozen:
		return true
	}
	return false
}

// Product represents a produce listing owned by a farmer profile.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    Category  `json:"category" db:"category"`
	Price       float64   `json:"price" db:"price"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Unit        Unit      `json:"unit" db:"unit"`
	Description string    `json:"description" db:"description"`
	Organic     bool      `json:"organic" db:"organic"`
	HarvestDate string    `json:"harvest_date" db:"harvest_date"`
	FarmerID    uuid.UUID `json:"farmer_id" db:"farmer_id"`
	ImageURL    string    `json:"image_url,omitempty" db:"image_url"`
	Available   bool      `json:"available" db:"available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FarmerSummary is the result of joining a product to its owning profile.
// The join can fail without failing the listing, so the two outcomes are
// explicit: Resolved carries the farmer details, Unresolved carries nothing.
type FarmerSummary struct {
	Resolved bool   `json:"resolved"`
	Name     string `json:"name,omitempty"`
	FarmName string `json:"farm_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Fallback text rendered when the owner profile lookup failed. A broken
// join degrades one card, never the whole listing.
const (
	FallbackFarmerName = "Unknown Farmer"
	FallbackFarmName   = "Unknown Farm"
)

// DisplayName returns the farmer name to render, substituting the fallback
// when the join did not resolve.
func (f FarmerSummary) DisplayName() string {
	if !f.Resolved || f.Name == "" {
		return FallbackFarmerName
	}
	return f.Name
}

// DisplayFarm returns the farm name to render, substituting the fallback
// when the join did not resolve.
func (f FarmerSummary) DisplayFarm() string {
	if !f.Resolved || f.FarmName == "" {
		return FallbackFarmName
	}
	return f.FarmName
}

// ResolvedFarmer builds the Resolved arm of the summary.
func ResolvedFarmer(name, farmName, phone string) FarmerSummary {
	return FarmerSummary{Resolved: true, Name: name, FarmName: farmName, Phone: phone}
}

// UnresolvedFarmer is the summary used when the owner profile lookup failed.
func UnresolvedFarmer() FarmerSummary {
	return FarmerSummary{}
}

// ProductListing is a product together with its (possibly unresolved) owner.
type ProductListing struct {
	Product Product       `json:"product"`
	Farmer  FarmerSummary `json:"farmer"`
}
