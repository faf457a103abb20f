package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"agrilocal/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			user_type VARCHAR(20) NOT NULL,
			first_name VARCHAR(100) NOT NULL DEFAULT '',
			last_name VARCHAR(100) NOT NULL DEFAULT '',
			phone VARCHAR(30) NOT NULL DEFAULT '',
			location_address TEXT NOT NULL DEFAULT '',
			location_pin_code VARCHAR(20) NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			farm_name VARCHAR(255) NOT NULL DEFAULT '',
			farm_description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(50) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			quantity DECIMAL(10, 2) NOT NULL DEFAULT 0,
			unit VARCHAR(20) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			organic BOOLEAN NOT NULL DEFAULT FALSE,
			harvest_date VARCHAR(20) NOT NULL DEFAULT '',
			farmer_id UUID NOT NULL,
			image_url VARCHAR(500) NOT NULL DEFAULT '',
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY,
			profile_id UUID NOT NULL,
			token VARCHAR(255) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func newFarmerProfile(email string) *domain.Profile {
	return &domain.Profile{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    "$2a$10$notarealhashnotarealhashnotarealha",
		UserType:        domain.RoleFarmer,
		FirstName:       "Rajesh",
		LastName:        "Sharma",
		Phone:           "+91 9876543210",
		LocationAddress: "Pune, Maharashtra",
		LocationPinCode: "411001",
		FarmName:        "Sharma Organic Farm",
		FarmDescription: "Family-owned organic farm",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func newProduct(farmerID uuid.UUID, name string) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Category:    domain.CategoryVegetables,
		Price:       45,
		Quantity:    50,
		Unit:        domain.UnitKg,
		Description: "test product",
		Organic:     true,
		HarvestDate: "2024-01-15",
		FarmerID:    farmerID,
		Available:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestProperty_ProfileRoundTripPreservesAttributes(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a profile preserves all attributes", prop.ForAll(
		func(email, firstName, lastName, phone, pinCode, farmName string) bool {
			_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)

			profile := &domain.Profile{
				ID:              uuid.New(),
				Email:           email,
				PasswordHash:    "$2a$10$notarealhashnotarealhashnotarealha",
				UserType:        domain.RoleFarmer,
				FirstName:       firstName,
				LastName:        lastName,
				Phone:           phone,
				LocationAddress: "Pune, Maharashtra",
				LocationPinCode: pinCode,
				FarmName:        farmName,
				FarmDescription: "grown with care",
				CreatedAt:       time.Now(),
				UpdatedAt:       time.Now(),
			}

			if err := repo.Create(ctx, profile); err != nil {
				t.Logf("FAIL: Failed to create profile: %v", err)
				return false
			}

			retrieved, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve profile: %v", err)
				return false
			}

			ok := retrieved.ID == profile.ID &&
				retrieved.UserType == domain.RoleFarmer &&
				retrieved.FirstName == firstName &&
				retrieved.LastName == lastName &&
				retrieved.Phone == phone &&
				retrieved.LocationPinCode == pinCode &&
				retrieved.FarmName == farmName
			if !ok {
				t.Logf("FAIL: attribute mismatch: %+v vs %+v", retrieved, profile)
			}

			_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)
			return ok
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.RegexMatch(`\+91 9[0-9]{9}`),
		gen.RegexMatch(`[1-9][0-9]{5}`),
		gen.RegexMatch(`[A-Z][a-z]{3,12} Farm`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProfileRepository_DuplicateEmail(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	profile := newFarmerProfile("dup@example.com")
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	defer testDB.Exec("DELETE FROM profiles WHERE email = $1", profile.Email)

	second := newFarmerProfile(profile.Email)
	second.ID = uuid.New()
	if err := repo.Create(ctx, second); err != ErrProfileAlreadyExists {
		t.Errorf("Expected ErrProfileAlreadyExists, got %v", err)
	}
}

func TestProfileRepository_Update(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	profile := newFarmerProfile("update@example.com")
	if err := repo.Create(ctx, profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	defer testDB.Exec("DELETE FROM profiles WHERE email = $1", profile.Email)

	profile.FarmName = "Green Valley Farm"
	profile.Phone = "+91 9000000000"
	profile.UpdatedAt = time.Now()
	if err := repo.Update(ctx, profile); err != nil {
		t.Fatalf("Failed to update profile: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve profile: %v", err)
	}
	if retrieved.FarmName != "Green Valley Farm" || retrieved.Phone != "+91 9000000000" {
		t.Errorf("Update not reflected: %+v", retrieved)
	}

	missing := newFarmerProfile("ghost@example.com")
	if err := repo.Update(ctx, missing); err != ErrProfileNotFound {
		t.Errorf("Expected ErrProfileNotFound for unknown profile, got %v", err)
	}
}

func TestProductRepository_ListAvailableJoinsFarmer(t *testing.T) {
	profileRepo := NewProfileRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	farmer := newFarmerProfile("join@example.com")
	if err := profileRepo.Create(ctx, farmer); err != nil {
		t.Fatalf("Failed to create farmer: %v", err)
	}
	defer testDB.Exec("DELETE FROM profiles WHERE email = $1", farmer.Email)

	available := newProduct(farmer.ID, "Fresh Tomatoes")
	hidden := newProduct(farmer.ID, "Hidden Beans")
	hidden.Available = false

	for _, p := range []*domain.Product{available, hidden} {
		if err := productRepo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
		defer testDB.Exec("DELETE FROM products WHERE id = $1", p.ID)
	}

	listings, err := productRepo.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("Failed to list available products: %v", err)
	}

	var found *domain.ProductListing
	for i := range listings {
		if listings[i].Product.ID == hidden.ID {
			t.Error("Unavailable product appeared in the listing")
		}
		if listings[i].Product.ID == available.ID {
			found = &listings[i]
		}
	}
	if found == nil {
		t.Fatal("Available product missing from the listing")
	}

	if !found.Farmer.Resolved {
		t.Fatal("Farmer join should resolve for an existing profile")
	}
	if found.Farmer.Name != "Rajesh Sharma" {
		t.Errorf("Farmer name = %q, want %q", found.Farmer.Name, "Rajesh Sharma")
	}
	if found.Farmer.FarmName != "Sharma Organic Farm" {
		t.Errorf("Farm name = %q, want %q", found.Farmer.FarmName, "Sharma Organic Farm")
	}
}

func TestProductRepository_OrphanProductYieldsUnresolvedFarmer(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	orphan := newProduct(uuid.New(), "Orphan Okra")
	if err := productRepo.Create(ctx, orphan); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	defer testDB.Exec("DELETE FROM products WHERE id = $1", orphan.ID)

	listing, err := productRepo.FindListing(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("Failed to find listing: %v", err)
	}
	if listing.Farmer.Resolved {
		t.Error("Orphan product resolved a farmer; the join should degrade to Unresolved")
	}

	listings, err := productRepo.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("ListAvailable should not fail on an orphan row: %v", err)
	}
	seen := false
	for _, l := range listings {
		if l.Product.ID == orphan.ID {
			seen = true
			if l.Farmer.Resolved {
				t.Error("Orphan row resolved a farmer in the listing")
			}
		}
	}
	if !seen {
		t.Error("Orphan product should still be rendered in the listing")
	}
}

func TestRefreshTokenRepository_RevokeLifecycle(t *testing.T) {
	repo := NewRefreshTokenRepository(testDB)
	ctx := context.Background()

	token := &domain.RefreshToken{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, token); err != nil {
		t.Fatalf("Failed to create refresh token: %v", err)
	}
	defer testDB.Exec("DELETE FROM refresh_tokens WHERE id = $1", token.ID)

	if _, err := repo.FindByToken(ctx, token.Token); err != nil {
		t.Fatalf("Token should be valid before revocation: %v", err)
	}

	if err := repo.Revoke(ctx, token.Token); err != nil {
		t.Fatalf("Failed to revoke token: %v", err)
	}
	if _, err := repo.FindByToken(ctx, token.Token); err != ErrRefreshTokenRevoked {
		t.Errorf("Expected ErrRefreshTokenRevoked, got %v", err)
	}

	if err := repo.Revoke(ctx, "missing-token"); err != ErrRefreshTokenNotFound {
		t.Errorf("Expected ErrRefreshTokenNotFound, got %v", err)
	}
}
