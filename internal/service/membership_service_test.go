package service

import (
	"context"
	"errors"
	"testing"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
)

func membershipFixture(t *testing.T) (*provisionFixture, MembershipService) {
	t.Helper()
	f, _ := registeredFixture(t)
	f.seedUser(t, "clerk@acme.test")
	svc := NewMembershipService(f.registrations, f.companies, f.permissions, f.users, nil)
	return f, svc
}

func TestAssignUser(t *testing.T) {
	f, svc := membershipFixture(t)
	ctx := context.Background()

	resp, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{
		UserEmail: "clerk@acme.test",
	})
	if err != nil {
		t.Fatalf("AssignUser() error = %v", err)
	}
	if resp.Company != "Acme Retail" {
		t.Errorf("company = %q, want %q", resp.Company, "Acme Retail")
	}
	if resp.AlreadyMember {
		t.Error("AlreadyMember = true on first assignment")
	}

	perm, _ := f.permissions.Get(ctx, "clerk@acme.test", domain.PermissionCompany, "Acme Retail")
	if perm == nil {
		t.Fatal("company permission not granted")
	}
	if !perm.IsDefault {
		t.Error("first company should become the user's default")
	}
	hasRole, _ := f.users.HasRole(ctx, "clerk@acme.test", domain.RoleCompanyUser)
	if !hasRole {
		t.Error("company role not granted")
	}

	// Re-assigning reports membership instead of failing.
	again, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{UserEmail: "clerk@acme.test"})
	if err != nil {
		t.Fatalf("second AssignUser() error = %v", err)
	}
	if !again.AlreadyMember {
		t.Error("AlreadyMember = false on repeat assignment")
	}
	if again.PermissionID != perm.ID {
		t.Errorf("permission id = %q, want existing %q", again.PermissionID, perm.ID)
	}
}

func TestAssignUserAuthorization(t *testing.T) {
	f, svc := membershipFixture(t)
	ctx := context.Background()
	f.seedUser(t, "outsider@other.test")

	_, err := svc.AssignUser(ctx, "outsider@other.test", &dto.AssignUserRequest{
		UserEmail:   "clerk@acme.test",
		CompanyName: "Acme Retail",
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("AssignUser() error = %v, want ErrNotAuthorized", err)
	}

	// A System Manager may manage any company.
	if _, err := f.users.GrantRole(ctx, "outsider@other.test", domain.RoleSystemManager); err != nil {
		t.Fatalf("grant role: %v", err)
	}
	if _, err := svc.AssignUser(ctx, "outsider@other.test", &dto.AssignUserRequest{
		UserEmail:   "clerk@acme.test",
		CompanyName: "Acme Retail",
	}); err != nil {
		t.Fatalf("AssignUser() as manager error = %v", err)
	}
}

func TestAssignUserUnknownTargets(t *testing.T) {
	_, svc := membershipFixture(t)
	ctx := context.Background()

	_, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{UserEmail: "ghost@acme.test"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("AssignUser(unknown user) error = %v, want ErrUserNotFound", err)
	}

	_, err = svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{
		UserEmail:   "clerk@acme.test",
		CompanyName: "No Such Co",
	})
	if !errors.Is(err, ErrCompanyNotFound) {
		t.Errorf("AssignUser(unknown company) error = %v, want ErrCompanyNotFound", err)
	}
}

func TestRemoveUser(t *testing.T) {
	f, svc := membershipFixture(t)
	ctx := context.Background()

	if _, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{UserEmail: "clerk@acme.test"}); err != nil {
		t.Fatalf("AssignUser() error = %v", err)
	}

	if err := svc.RemoveUser(ctx, "owner@acme.test", "clerk@acme.test", "Acme Retail"); err != nil {
		t.Fatalf("RemoveUser() error = %v", err)
	}
	perm, _ := f.permissions.Get(ctx, "clerk@acme.test", domain.PermissionCompany, "Acme Retail")
	if perm != nil {
		t.Error("permission still present after removal")
	}

	if err := svc.RemoveUser(ctx, "owner@acme.test", "clerk@acme.test", "Acme Retail"); !errors.Is(err, ErrNotMember) {
		t.Errorf("second RemoveUser() error = %v, want ErrNotMember", err)
	}
}

func TestRemoveUserProtectsOwner(t *testing.T) {
	_, svc := membershipFixture(t)

	err := svc.RemoveUser(context.Background(), "owner@acme.test", "owner@acme.test", "Acme Retail")
	if !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("RemoveUser(owner) error = %v, want ErrCannotRemoveOwner", err)
	}
}

func TestCompanyUsers(t *testing.T) {
	_, svc := membershipFixture(t)
	ctx := context.Background()

	if _, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{UserEmail: "clerk@acme.test"}); err != nil {
		t.Fatalf("AssignUser() error = %v", err)
	}

	resp, err := svc.CompanyUsers(ctx, "owner@acme.test", "")
	if err != nil {
		t.Fatalf("CompanyUsers() error = %v", err)
	}
	if resp.Company != "Acme Retail" {
		t.Errorf("company = %q, want %q", resp.Company, "Acme Retail")
	}
	if resp.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2", resp.TotalUsers)
	}
	if resp.Owner == nil || resp.Owner.Email != "owner@acme.test" {
		t.Errorf("owner = %+v, want owner@acme.test", resp.Owner)
	}

	// Members may list; strangers may not.
	if _, err := svc.CompanyUsers(ctx, "clerk@acme.test", "Acme Retail"); err != nil {
		t.Errorf("CompanyUsers() as member error = %v", err)
	}
	if _, err := svc.CompanyUsers(ctx, "stranger@other.test", "Acme Retail"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("CompanyUsers() as stranger error = %v, want ErrNotAuthorized", err)
	}
}

func TestUserCompanies(t *testing.T) {
	_, svc := membershipFixture(t)
	ctx := context.Background()

	if _, err := svc.AssignUser(ctx, "owner@acme.test", &dto.AssignUserRequest{UserEmail: "clerk@acme.test"}); err != nil {
		t.Fatalf("AssignUser() error = %v", err)
	}

	resp, err := svc.UserCompanies(ctx, "clerk@acme.test")
	if err != nil {
		t.Fatalf("UserCompanies() error = %v", err)
	}
	if resp.TotalCompanies != 1 {
		t.Fatalf("total companies = %d, want 1", resp.TotalCompanies)
	}
	if resp.Companies[0].Company != "Acme Retail" {
		t.Errorf("company = %q, want %q", resp.Companies[0].Company, "Acme Retail")
	}
	if resp.Companies[0].Abbr == "" {
		t.Error("company abbr missing")
	}
	if len(resp.OwnedCompanies) != 0 {
		t.Errorf("owned companies = %v, want none", resp.OwnedCompanies)
	}

	ownerResp, err := svc.UserCompanies(ctx, "owner@acme.test")
	if err != nil {
		t.Fatalf("UserCompanies(owner) error = %v", err)
	}
	if len(ownerResp.OwnedCompanies) != 1 || ownerResp.OwnedCompanies[0] != "Acme Retail" {
		t.Errorf("owned companies = %v, want [Acme Retail]", ownerResp.OwnedCompanies)
	}
}

func TestResolveCompanyRequiresOne(t *testing.T) {
	_, svc := membershipFixture(t)

	// clerk has no company of their own and names none.
	_, err := svc.AssignUser(context.Background(), "clerk@acme.test", &dto.AssignUserRequest{UserEmail: "owner@acme.test"})
	if !errors.Is(err, ErrNoCompany) {
		t.Fatalf("AssignUser() error = %v, want ErrNoCompany", err)
	}
}
