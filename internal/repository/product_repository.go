package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agrilocal/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*domain.Product, error)
	// ListAvailable returns every available product joined to its owning
	// farmer profile. A missing profile yields an Unresolved farmer summary
	// for that row; it never fails the listing.
	ListAvailable(ctx context.Context) ([]domain.ProductListing, error)
	FindListing(ctx context.Context, id uuid.UUID) (*domain.ProductListing, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, category, price, quantity, unit, description,
		organic, harvest_date, farmer_id, image_url, available, created_at, updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Category,
		product.Price,
		product.Quantity,
		product.Unit,
		product.Description,
		product.Organic,
		product.HarvestDate,
		product.FarmerID,
		product.ImageURL,
		product.Available,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func scanProduct(scan func(dest ...interface{}) error) (*domain.Product, error) {
	product := &domain.Product{}
	err := scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Quantity,
		&product.Unit,
		&product.Description,
		&product.Organic,
		&product.HarvestDate,
		&product.FarmerID,
		&product.ImageURL,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByFarmer retrieves all products owned by one farmer, newest first
func (r *productRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE farmer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by farmer: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

const listingQuery = `
	SELECT p.id, p.name, p.category, p.price, p.quantity, p.unit, p.description,
	       p.organic, p.harvest_date, p.farmer_id, p.image_url, p.available,
	       p.created_at, p.updated_at,
	       pr.first_name, pr.last_name, pr.farm_name, pr.phone
	FROM products p
	LEFT JOIN profiles pr ON pr.id = p.farmer_id
`

func scanListing(scan func(dest ...interface{}) error) (domain.ProductListing, error) {
	var (
		product   domain.Product
		firstName sql.NullString
		lastName  sql.NullString
		farmName  sql.NullString
		phone     sql.NullString
	)

	err := scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Quantity,
		&product.Unit,
		&product.Description,
		&product.Organic,
		&product.HarvestDate,
		&product.FarmerID,
		&product.ImageURL,
		&product.Available,
		&product.CreatedAt,
		&product.UpdatedAt,
		&firstName,
		&lastName,
		&farmName,
		&phone,
	)
	if err != nil {
		return domain.ProductListing{}, err
	}

	farmer := domain.UnresolvedFarmer()
	if firstName.Valid || lastName.Valid {
		display := (&domain.Profile{
			FirstName: firstName.String,
			LastName:  lastName.String,
		}).DisplayName()
		farmer = domain.ResolvedFarmer(display, farmName.String, phone.String)
	}

	return domain.ProductListing{Product: product, Farmer: farmer}, nil
}

// ListAvailable retrieves available products with their farmer join, newest first
func (r *productRepository) ListAvailable(ctx context.Context) ([]domain.ProductListing, error) {
	query := listingQuery + `
	WHERE p.available = TRUE
	ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list available products: %w", err)
	}
	defer rows.Close()

	listings := []domain.ProductListing{}
	for rows.Next() {
		listing, err := scanListing(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product listings: %w", err)
	}

	return listings, nil
}

// FindListing retrieves one product with its farmer join
func (r *productRepository) FindListing(ctx context.Context, id uuid.UUID) (*domain.ProductListing, error) {
	query := listingQuery + `
	WHERE p.id = $1
	`

	listing, err := scanListing(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product listing: %w", err)
	}

	return &listing, nil
}
