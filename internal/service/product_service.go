package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrilocal/internal/domain"
	"agrilocal/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidCategory = errors.New("category is not one of the known product categories")
	ErrInvalidUnit     = errors.New("unit is not one of the supported units of measure")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrNotAFarmer      = errors.New("only farmer profiles can list products")
)

// AddProductInput carries the new-product form fields.
type AddProductInput struct {
	Name        string
	Category    domain.Category
	Price       float64
	Quantity    float64
	Unit        domain.Unit
	Description string
	Organic     bool
	HarvestDate string
	ImageURL    string
}

// ProductService defines the farmer-facing listing operations
type ProductService interface {
	AddProduct(ctx context.Context, farmerID uuid.UUID, input AddProductInput) (*domain.Product, error)
	MyProducts(ctx context.Context, farmerID uuid.UUID) ([]*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	profileRepo repository.ProfileRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, profileRepo repository.ProfileRepository) ProductService {
	return &productService{productRepo: productRepo, profileRepo: profileRepo}
}

// AddProduct validates and persists a new listing for a farmer. Newly
// listed products are always available; nothing in the UI unsets the flag.
func (s *productService) AddProduct(ctx context.Context, farmerID uuid.UUID, input AddProductInput) (*domain.Product, error) {
	if !input.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if input.Unit == "" {
		input.Unit = domain.UnitKg
	}
	if !input.Unit.Valid() {
		return nil, ErrInvalidUnit
	}
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	owner, err := s.profileRepo.FindByID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve farmer profile: %w", err)
	}
	if owner.UserType != domain.RoleFarmer {
		return nil, ErrNotAFarmer
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		Description: input.Description,
		Organic:     input.Organic,
		HarvestDate: input.HarvestDate,
		FarmerID:    farmerID,
		ImageURL:    input.ImageURL,
		Available:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// MyProducts lists a farmer's own products, newest first
func (s *productService) MyProducts(ctx context.Context, farmerID uuid.UUID) ([]*domain.Product, error) {
	products, err := s.productRepo.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
