package catalog

import (
	"context"

	"agrilocal/internal/domain"

	"github.com/google/uuid"
)

// ProductSource supplies the available-product listings a buyer can browse.
// Implementations may be backed by the database or by an in-memory fixture;
// the browse path does not care which.
type ProductSource interface {
	FetchAvailableProducts(ctx context.Context) ([]domain.ProductListing, error)
}

// SourceFunc adapts a plain function to the ProductSource interface, so a
// repository method can serve as a source without a wrapper type.
type SourceFunc func(ctx context.Context) ([]domain.ProductListing, error)

// FetchAvailableProducts calls f.
func (f SourceFunc) FetchAvailableProducts(ctx context.Context) ([]domain.ProductListing, error) {
	return f(ctx)
}

// FixtureSource is an in-memory ProductSource seeded with demo listings.
// It stands in for the database during development and demos.
type FixtureSource struct {
	listings []domain.ProductListing
}

// NewFixtureSource builds a FixtureSource with the default demo catalog.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{listings: demoListings()}
}

// FetchAvailableProducts returns a copy of the fixture listings.
func (s *FixtureSource) FetchAvailableProducts(ctx context.Context) ([]domain.ProductListing, error) {
	out := make([]domain.ProductListing, len(s.listings))
	copy(out, s.listings)
	return out, nil
}

func demoListings() []domain.ProductListing {
	type seed struct {
		name        string
		category    domain.Category
		price       float64
		quantity    float64
		unit        domain.Unit
		description string
		organic     bool
		harvestDate string
		farmerName  string
		farmName    string
		phone       string
	}

	seeds := []seed{
		{
			name: "Fresh Tomatoes", category: domain.CategoryVegetables,
			price: 45, quantity: 50, unit: domain.UnitKg,
			description: "Vine-ripened organic tomatoes, perfect for salads and cooking",
			organic:     true, harvestDate: "2024-01-15",
			farmerName: "Rajesh Sharma", farmName: "Sharma Organic Farm", phone: "+91 9876543210",
		},
		{
			name: "Green Spinach", category: domain.CategoryLeafyGreens,
			price: 35, quantity: 25, unit: domain.UnitKg,
			description: "Fresh baby spinach leaves, rich in iron and vitamins",
			organic:     true, harvestDate: "2024-01-16",
			farmerName: "Rajesh Sharma", farmName: "Sharma Organic Farm", phone: "+91 9876543210",
		},
		{
			name: "Red Apples", category: domain.CategoryFruits,
			price: 120, quantity: 30, unit: domain.UnitKg,
			description: "Crisp and sweet red apples, freshly harvested from our orchard",
			organic:     false, harvestDate: "2024-01-10",
			farmerName: "Priya Patel", farmName: "Hillside Orchard", phone: "+91 9876543211",
		},
		{
			name: "Fresh Milk", category: domain.CategoryDairy,
			price: 60, quantity: 20, unit: domain.UnitLiters,
			description: "Fresh cow milk from grass-fed cows, delivered daily",
			organic:     true, harvestDate: "2024-01-17",
			farmerName: "Mukesh Kumar", farmName: "Kumar Dairy Farm", phone: "+91 9876543212",
		},
		{
			name: "Fresh Mint", category: domain.CategoryHerbs,
			price: 25, quantity: 5, unit: domain.UnitKg,
			description: "Aromatic fresh mint leaves, perfect for teas and cooking",
			organic:     true, harvestDate: "2024-01-16",
			farmerName: "Sunita Devi", farmName: "Herb Garden", phone: "+91 9876543213",
		},
		{
			name: "Organic Carrots", category: domain.CategoryVegetables,
			price: 55, quantity: 40, unit: domain.UnitKg,
			description: "Sweet and crunchy organic carrots, rich in beta-carotene",
			organic:     true, harvestDate: "2024-01-14",
			farmerName: "Ramesh Gupta", farmName: "Gupta Vegetable Farm", phone: "+91 9876543214",
		},
	}

	listings := make([]domain.ProductListing, 0, len(seeds))
	for _, s := range seeds {
		listings = append(listings, domain.ProductListing{
			Product: domain.Product{
				ID:          uuid.New(),
				Name:        s.name,
				Category:    s.category,
				Price:       s.price,
				Quantity:    s.quantity,
				Unit:        s.unit,
				Description: s.description,
				Organic:     s.organic,
				HarvestDate: s.harvestDate,
				FarmerID:    uuid.New(),
				Available:   true,
			},
			Farmer: domain.ResolvedFarmer(s.farmerName, s.farmName, s.phone),
		})
	}
	return listings
}
