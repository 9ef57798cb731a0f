package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/pkg/database"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	cfg := &database.PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            5432,
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		Database:        getEnv("POSTGRES_DB", "havano_company"),
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}

	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	return db
}

func cleanupTestData(t *testing.T, db *database.PostgresDB) {
	ctx := context.Background()
	statements := []string{
		"DELETE FROM user_permissions WHERE user_email LIKE 'it-%'",
		"DELETE FROM user_roles WHERE user_email LIKE 'it-%'",
		"DELETE FROM company_registrations WHERE user_email LIKE 'it-%'",
		"DELETE FROM companies WHERE name LIKE 'it-%'",
		"DELETE FROM customers WHERE customer_name LIKE 'cust-it-%'",
		"DELETE FROM users WHERE email LIKE 'it-%'",
	}
	for _, stmt := range statements {
		if _, err := db.Pool().Exec(ctx, stmt); err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func seedTestUser(t *testing.T, repo *PostgresUserRepository, email string) {
	now := time.Now()
	err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		FirstName:    "Integration",
		FullName:     "Integration Test",
		PasswordHash: "x",
		Enabled:      true,
		UserType:     domain.UserTypeWebsiteUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", email, err)
	}
}

func TestPostgresUserRepository_CreateAndRoles(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresUserRepository(db.Pool())
	ctx := context.Background()

	seedTestUser(t, repo, "it-user-roles@test.local")

	err := repo.Create(ctx, &domain.User{
		Email:     "it-user-roles@test.local",
		FirstName: "Dup",
		FullName:  "Dup",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	granted, err := repo.GrantRole(ctx, "it-user-roles@test.local", domain.RoleSystemManager)
	if err != nil {
		t.Fatalf("Failed to grant role: %v", err)
	}
	if !granted {
		t.Error("Expected first grant to report true")
	}

	granted, err = repo.GrantRole(ctx, "it-user-roles@test.local", domain.RoleSystemManager)
	if err != nil {
		t.Fatalf("Failed to re-grant role: %v", err)
	}
	if granted {
		t.Error("Expected repeated grant to report false")
	}

	if err := repo.SetUserType(ctx, "it-user-roles@test.local", domain.UserTypeSystemUser); err != nil {
		t.Fatalf("Failed to set user type: %v", err)
	}

	found, err := repo.GetByEmail(ctx, "it-user-roles@test.local")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if found.UserType != domain.UserTypeSystemUser {
		t.Errorf("Expected user type %q, got %q", domain.UserTypeSystemUser, found.UserType)
	}
}

func TestPostgresCompanyRepository_CreateSeedsResources(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresCompanyRepository(db.Pool())
	resources := NewPostgresResourceRepository(db.Pool())
	ctx := context.Background()

	now := time.Now()
	company := &domain.Company{
		ID:        uuid.New().String(),
		Name:      "it-acme-seed",
		Abbr:      "ITSEED1",
		Currency:  "USD",
		Country:   "United States",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, company); err != nil {
		t.Fatalf("Failed to create company: %v", err)
	}

	warehouses, err := resources.ListWarehouses(ctx, company.Name)
	if err != nil {
		t.Fatalf("Failed to list warehouses: %v", err)
	}
	if len(warehouses) != len(domain.SeedWarehouseNames) {
		t.Errorf("Expected %d warehouses, got %d", len(domain.SeedWarehouseNames), len(warehouses))
	}

	stores, err := resources.FindWarehouseByPrefix(ctx, company.Name, domain.DefaultWarehousePrefix)
	if err != nil {
		t.Fatalf("Failed to find default warehouse: %v", err)
	}
	if stores == nil {
		t.Fatal("Expected a Stores warehouse to be seeded")
	}
	if stores.Name != "Stores - ITSEED1" {
		t.Errorf("Expected warehouse 'Stores - ITSEED1', got %q", stores.Name)
	}

	centers, err := resources.ListCostCenters(ctx, company.Name)
	if err != nil {
		t.Fatalf("Failed to list cost centers: %v", err)
	}
	if len(centers) != 1 || centers[0].Name != "Main - ITSEED1" {
		t.Errorf("Expected a single 'Main - ITSEED1' cost center, got %+v", centers)
	}
}

func TestPostgresCompanyRepository_DuplicateName(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	repo := NewPostgresCompanyRepository(db.Pool())
	ctx := context.Background()

	now := time.Now()
	first := &domain.Company{
		ID: uuid.New().String(), Name: "it-acme-dup", Abbr: "ITDUP1",
		Currency: "USD", Country: "United States", Enabled: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create first company: %v", err)
	}

	second := &domain.Company{
		ID: uuid.New().String(), Name: "it-acme-dup", Abbr: "ITDUP2",
		Currency: "USD", Country: "United States", Enabled: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(ctx, second); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgresRegistrationRepository_Lifecycle(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	users := NewPostgresUserRepository(db.Pool())
	repo := NewPostgresRegistrationRepository(db.Pool())
	ctx := context.Background()

	seedTestUser(t, users, "it-reg@test.local")

	now := time.Now()
	reg := &domain.Registration{
		ID:               uuid.New().String(),
		UserEmail:        "it-reg@test.local",
		OrganizationName: "it-reg-org",
		Status:           domain.StatusCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(ctx, reg); err != nil {
		t.Fatalf("Failed to create registration: %v", err)
	}

	exists, err := repo.ExistsByUser(ctx, "it-reg@test.local")
	if err != nil {
		t.Fatalf("Failed to check registration: %v", err)
	}
	if !exists {
		t.Error("Expected registration to exist")
	}

	dup := &domain.Registration{
		ID:               uuid.New().String(),
		UserEmail:        "it-reg@test.local",
		OrganizationName: "it-reg-org-2",
		Status:           domain.StatusCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for second registration, got %v", err)
	}

	found, err := repo.GetByUser(ctx, "it-reg@test.local")
	if err != nil {
		t.Fatalf("Failed to get registration: %v", err)
	}
	if found == nil || found.ID != reg.ID {
		t.Fatalf("Expected registration %s, got %+v", reg.ID, found)
	}
	if found.CompanyName != "" {
		t.Errorf("Expected no company link yet, got %q", found.CompanyName)
	}

	companies := NewPostgresCompanyRepository(db.Pool())
	company := &domain.Company{
		ID: uuid.New().String(), Name: "it-reg-company", Abbr: "ITREG1",
		Currency: "USD", Country: "United States", Enabled: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := companies.Create(ctx, company); err != nil {
		t.Fatalf("Failed to create company: %v", err)
	}

	reg.CompanyName = company.Name
	if err := repo.Update(ctx, reg); err != nil {
		t.Fatalf("Failed to update registration: %v", err)
	}

	found, _ = repo.GetByUser(ctx, "it-reg@test.local")
	if found.CompanyName != company.Name {
		t.Errorf("Expected company link %q, got %q", company.Name, found.CompanyName)
	}

	if err := repo.Delete(ctx, reg.ID); err != nil {
		t.Fatalf("Failed to delete registration: %v", err)
	}
	exists, _ = repo.ExistsByUser(ctx, "it-reg@test.local")
	if exists {
		t.Error("Expected registration to be gone after delete")
	}
}

func TestPostgresPermissionRepository_DefaultSlot(t *testing.T) {
	skipIfNoIntegration(t)

	db := setupTestDB(t)
	defer db.Close()
	defer cleanupTestData(t, db)

	users := NewPostgresUserRepository(db.Pool())
	repo := NewPostgresPermissionRepository(db.Pool())
	ctx := context.Background()

	seedTestUser(t, users, "it-perm@test.local")

	first := &domain.UserPermission{
		ID:         uuid.New().String(),
		UserEmail:  "it-perm@test.local",
		Allow:      domain.PermissionWarehouse,
		ForValue:   "it-perm-wh-a",
		ApplyToAll: true,
		IsDefault:  true,
		CreatedAt:  time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create permission: %v", err)
	}

	// A second default for the same kind must hit the partial unique index
	second := &domain.UserPermission{
		ID:         uuid.New().String(),
		UserEmail:  "it-perm@test.local",
		Allow:      domain.PermissionWarehouse,
		ForValue:   "it-perm-wh-b",
		ApplyToAll: true,
		IsDefault:  true,
		CreatedAt:  time.Now(),
	}
	if err := repo.Create(ctx, second); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for second default, got %v", err)
	}

	second.IsDefault = false
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Failed to create non-default permission: %v", err)
	}

	def, err := repo.GetDefault(ctx, "it-perm@test.local", domain.PermissionWarehouse)
	if err != nil {
		t.Fatalf("Failed to get default permission: %v", err)
	}
	if def == nil || def.ForValue != "it-perm-wh-a" {
		t.Errorf("Expected default 'it-perm-wh-a', got %+v", def)
	}
}
