package service

import (
	"context"
	"fmt"

	"agrilocal/internal/catalog"
	"agrilocal/internal/domain"
	"agrilocal/internal/repository"

	"github.com/google/uuid"
)

// Notification is the transient, user-visible acknowledgement produced by
// contact and order-request actions. Nothing is persisted or delivered.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CatalogService is the buyer-facing browse surface: available products with
// their farmer join, narrowed by the catalog filter.
type CatalogService interface {
	Browse(ctx context.Context, searchTerm, category string) ([]domain.ProductListing, error)
	ContactFarmer(ctx context.Context, productID uuid.UUID) (*Notification, error)
	RequestOrder(ctx context.Context, productID uuid.UUID) (*Notification, error)
}

type catalogService struct {
	source      catalog.ProductSource
	productRepo repository.ProductRepository
}

// NewCatalogService creates a CatalogService over the given product source.
// The source decides whether listings come from the database or a fixture.
func NewCatalogService(source catalog.ProductSource, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{source: source, productRepo: productRepo}
}

// Browse fetches the available listings and applies the catalog filter.
// The whole result replaces any previous view in one step; there is no
// partial merge.
func (s *catalogService) Browse(ctx context.Context, searchTerm, category string) ([]domain.ProductListing, error) {
	listings, err := s.source.FetchAvailableProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available products: %w", err)
	}

	return catalog.Filter(listings, searchTerm, category), nil
}

// ContactFarmer returns the contact notification for a product's farmer,
// falling back to the unknown-farmer text when the join did not resolve.
func (s *catalogService) ContactFarmer(ctx context.Context, productID uuid.UUID) (*Notification, error) {
	listing, err := s.productRepo.FindListing(ctx, productID)
	if err != nil {
		return nil, err
	}

	name := listing.Farmer.DisplayName()
	if !listing.Farmer.Resolved || listing.Farmer.Phone == "" {
		return &Notification{
			Title:       "Contact Information",
			Description: fmt.Sprintf("No contact details are available for %s.", name),
		}, nil
	}

	return &Notification{
		Title:       "Contact Information",
		Description: fmt.Sprintf("Contact %s at %s", name, listing.Farmer.Phone),
	}, nil
}

// RequestOrder acknowledges an order request. There is no persisted side
// effect: order fulfillment is outside this system.
func (s *catalogService) RequestOrder(ctx context.Context, productID uuid.UUID) (*Notification, error) {
	listing, err := s.productRepo.FindListing(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &Notification{
		Title: "Order Request Sent!",
		Description: fmt.Sprintf("Your order request for %s has been sent to %s.",
			listing.Product.Name, listing.Farmer.DisplayName()),
	}, nil
}
