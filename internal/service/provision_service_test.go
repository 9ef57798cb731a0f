package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
)

type provisionFixture struct {
	registrations *MockRegistrationRepository
	companies     *MockCompanyRepository
	permissions   *MockPermissionRepository
	users         *MockUserRepository
	resources     *MockResourceRepository
	service       ProvisionService
}

func newProvisionFixture(t *testing.T) *provisionFixture {
	t.Helper()
	resources := NewMockResourceRepository()
	f := &provisionFixture{
		registrations: NewMockRegistrationRepository(),
		companies:     NewMockCompanyRepository(resources),
		permissions:   NewMockPermissionRepository(),
		users:         NewMockUserRepository(),
		resources:     resources,
	}
	cfg := &ProvisionConfig{MaxAttempts: 3, RetryBaseDelay: time.Millisecond}
	f.service = NewProvisionService(f.registrations, f.companies, f.permissions, f.users, f.resources, cfg, nil, nil)
	return f
}

func (f *provisionFixture) seedUser(t *testing.T, email string) {
	t.Helper()
	err := f.users.Create(context.Background(), &domain.User{
		Email:     email,
		FirstName: "Test",
		FullName:  "Test User",
		Enabled:   true,
		UserType:  domain.UserTypeWebsiteUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestRegisterProvisionsCompany(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	ctx := context.Background()

	resp, err := f.service.Register(ctx, "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
		Industry:         "Retail grocery",
		Country:          "Zimbabwe",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.Status != dto.ProvisionCompleted {
		t.Errorf("status = %q, want %q", resp.Status, dto.ProvisionCompleted)
	}
	if resp.Company != "Acme Retail" {
		t.Errorf("company = %q, want %q", resp.Company, "Acme Retail")
	}
	if !strings.HasPrefix(resp.CompanyAbbr, "ACMown") {
		t.Errorf("abbr = %q, want prefix %q", resp.CompanyAbbr, "ACMown")
	}
	if len(resp.CompanyAbbr) != 10 {
		t.Errorf("abbr length = %d, want 10", len(resp.CompanyAbbr))
	}
	if f.companies.Count() != 1 {
		t.Errorf("companies stored = %d, want 1", f.companies.Count())
	}
	if f.registrations.Count() != 1 {
		t.Errorf("registrations stored = %d, want 1", f.registrations.Count())
	}

	reg, _ := f.registrations.GetByUser(ctx, "owner@acme.test")
	if reg == nil {
		t.Fatal("registration not stored")
	}
	if reg.CompanyName != "Acme Retail" {
		t.Errorf("registration company = %q, want %q", reg.CompanyName, "Acme Retail")
	}
	if reg.Status != domain.StatusCreated {
		t.Errorf("registration status = %q, want %q", reg.Status, domain.StatusCreated)
	}

	wantWarehouse := "Stores - " + resp.CompanyAbbr
	if resp.DefaultWarehouse != wantWarehouse {
		t.Errorf("default warehouse = %q, want %q", resp.DefaultWarehouse, wantWarehouse)
	}
	if resp.DefaultCustomer != "cust-Acme Retail" {
		t.Errorf("default customer = %q, want %q", resp.DefaultCustomer, "cust-Acme Retail")
	}

	for _, kind := range []domain.PermissionKind{
		domain.PermissionCompany,
		domain.PermissionWarehouse,
		domain.PermissionCustomer,
		domain.PermissionCostCenter,
	} {
		perm, err := f.permissions.GetDefault(ctx, "owner@acme.test", kind)
		if err != nil {
			t.Fatalf("GetDefault(%s) error = %v", kind, err)
		}
		if perm == nil {
			t.Errorf("no default %s permission granted", kind)
		}
	}

	warehousePerms, _ := f.permissions.ListByUser(ctx, "owner@acme.test", domain.PermissionWarehouse)
	if len(warehousePerms) != len(domain.SeedWarehouseNames) {
		t.Errorf("warehouse permissions = %d, want %d", len(warehousePerms), len(domain.SeedWarehouseNames))
	}

	account, _ := f.users.GetByEmail(ctx, "owner@acme.test")
	if account.UserType != domain.UserTypeSystemUser {
		t.Errorf("user type = %q, want %q", account.UserType, domain.UserTypeSystemUser)
	}
	roles, _ := f.users.ListRoles(ctx, "owner@acme.test")
	if len(roles) != len(domain.ProvisioningRoles) {
		t.Errorf("roles granted = %d, want %d", len(roles), len(domain.ProvisioningRoles))
	}

	for _, step := range resp.Steps {
		if step.Outcome != dto.StepOutcomeCompleted {
			t.Errorf("step %q outcome = %q, want %q", step.Step, step.Outcome, dto.StepOutcomeCompleted)
		}
	}
}

func TestRegisterRejectsDuplicateRegistration(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	ctx := context.Background()

	req := &dto.RegisterCompanyRequest{OrganizationName: "Acme Retail"}
	if _, err := f.service.Register(ctx, "owner@acme.test", req); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := f.service.Register(ctx, "owner@acme.test", &dto.RegisterCompanyRequest{OrganizationName: "Second Venture"})
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateRegistration", err)
	}
	if f.companies.Count() != 1 {
		t.Errorf("companies stored = %d, want 1", f.companies.Count())
	}
	if f.registrations.Count() != 1 {
		t.Errorf("registrations stored = %d, want 1", f.registrations.Count())
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		req       *dto.RegisterCompanyRequest
		wantErr   error
	}{
		{
			name:      "missing organization name",
			requester: "owner@acme.test",
			req:       &dto.RegisterCompanyRequest{OrganizationName: "   "},
			wantErr:   ErrOrganizationNameRequired,
		},
		{
			name:      "guest without user email",
			requester: "",
			req:       &dto.RegisterCompanyRequest{OrganizationName: "Acme Retail"},
			wantErr:   ErrUserEmailRequired,
		},
		{
			name:      "unknown user",
			requester: "nobody@acme.test",
			req:       &dto.RegisterCompanyRequest{OrganizationName: "Acme Retail"},
			wantErr:   ErrUserNotFound,
		},
		{
			name:      "invalid industry",
			requester: "owner@acme.test",
			req:       &dto.RegisterCompanyRequest{OrganizationName: "Acme Retail", Industry: "Aerospace"},
			wantErr:   ErrInvalidIndustry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProvisionFixture(t)
			f.seedUser(t, "owner@acme.test")

			_, err := f.service.Register(context.Background(), tt.requester, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if f.registrations.Count() != 0 {
				t.Errorf("registrations stored = %d, want 0", f.registrations.Count())
			}
			if f.companies.Count() != 0 {
				t.Errorf("companies stored = %d, want 0", f.companies.Count())
			}
		})
	}
}

func TestRegisterGuestFlowUsesRequestEmail(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "guest@shop.test")

	resp, err := f.service.Register(context.Background(), "", &dto.RegisterCompanyRequest{
		OrganizationName: "Corner Shop",
		UserEmail:        "guest@shop.test",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Registration.UserEmail != "guest@shop.test" {
		t.Errorf("registration user = %q, want %q", resp.Registration.UserEmail, "guest@shop.test")
	}
}

func TestRegisterRetriesTransientConflicts(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	f.companies.FailTimes = 2

	resp, err := f.service.Register(context.Background(), "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if f.companies.Attempts != 3 {
		t.Errorf("create attempts = %d, want 3", f.companies.Attempts)
	}
	if resp.Status != dto.ProvisionCompleted {
		t.Errorf("status = %q, want %q", resp.Status, dto.ProvisionCompleted)
	}
	if f.companies.Count() != 1 {
		t.Errorf("companies stored = %d, want 1", f.companies.Count())
	}
}

func TestRegisterGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	f.companies.FailTimes = 3

	_, err := f.service.Register(context.Background(), "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	})
	if !errors.Is(err, ErrCompanyContention) {
		t.Fatalf("Register() error = %v, want ErrCompanyContention", err)
	}
	if f.companies.Attempts != 3 {
		t.Errorf("create attempts = %d, want 3", f.companies.Attempts)
	}
	if f.companies.Count() != 0 {
		t.Errorf("companies stored = %d, want 0", f.companies.Count())
	}

	// The registration is left behind, unlinked, as the audit trail.
	reg, _ := f.registrations.GetByUser(context.Background(), "owner@acme.test")
	if reg == nil {
		t.Fatal("registration missing after failed run")
	}
	if reg.CompanyName != "" {
		t.Errorf("registration company = %q, want empty", reg.CompanyName)
	}
}

func TestRegisterDoesNotRetryPermanentErrors(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	f.companies.FailTimes = 1
	f.companies.FailWith = domain.ErrAlreadyExists

	_, err := f.service.Register(context.Background(), "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Register() error = %v, want ErrAlreadyExists", err)
	}
	if f.companies.Attempts != 1 {
		t.Errorf("create attempts = %d, want 1", f.companies.Attempts)
	}
}

func TestRegisterRecordsSecondaryStepFailures(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	stepErr := errors.New("cost center storage down")
	f.permissions.CreateErrFor = map[domain.PermissionKind]error{
		domain.PermissionCostCenter: stepErr,
	}

	resp, err := f.service.Register(context.Background(), "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Status != dto.ProvisionCompletedWithWarnings {
		t.Errorf("status = %q, want %q", resp.Status, dto.ProvisionCompletedWithWarnings)
	}
	if f.companies.Count() != 1 {
		t.Errorf("companies stored = %d, want 1", f.companies.Count())
	}

	var found bool
	for _, step := range resp.Steps {
		if step.Step == dto.StepCostCenterPermission {
			found = true
			if step.Outcome != dto.StepOutcomeFailed {
				t.Errorf("step outcome = %q, want %q", step.Outcome, dto.StepOutcomeFailed)
			}
			if step.Detail == "" {
				t.Error("failed step has no detail")
			}
		}
	}
	if !found {
		t.Errorf("step %q not recorded", dto.StepCostCenterPermission)
	}
}

func TestRegisterRoleGrantIsIdempotent(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	if _, err := f.users.GrantRole(context.Background(), "owner@acme.test", domain.RoleSystemManager); err != nil {
		t.Fatalf("pre-grant role: %v", err)
	}

	if _, err := f.service.Register(context.Background(), "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	roles, _ := f.users.ListRoles(context.Background(), "owner@acme.test")
	seen := make(map[string]int)
	for _, role := range roles {
		seen[role]++
	}
	if seen[domain.RoleSystemManager] != 1 {
		t.Errorf("System Manager granted %d times, want 1", seen[domain.RoleSystemManager])
	}
	if len(roles) != len(domain.ProvisioningRoles) {
		t.Errorf("roles granted = %d, want %d", len(roles), len(domain.ProvisioningRoles))
	}
}

func TestRegisterReusesExistingCustomer(t *testing.T) {
	f := newProvisionFixture(t)
	f.seedUser(t, "owner@acme.test")
	ctx := context.Background()

	existing := &domain.Customer{
		ID:        "pre-existing",
		Name:      "cust-Acme Retail",
		CreatedAt: time.Now(),
	}
	if err := f.resources.CreateCustomer(ctx, existing); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	resp, err := f.service.Register(ctx, "owner@acme.test", &dto.RegisterCompanyRequest{
		OrganizationName: "Acme Retail",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.Status != dto.ProvisionCompleted {
		t.Errorf("status = %q, want %q", resp.Status, dto.ProvisionCompleted)
	}
	customer, _ := f.resources.GetCustomerByName(ctx, "cust-Acme Retail")
	if customer.ID != "pre-existing" {
		t.Errorf("customer replaced, id = %q", customer.ID)
	}
}
