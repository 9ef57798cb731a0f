package dto

import (
	"github.com/draftpos/HavanoCompany/internal/domain"
)

// RegisterCompanyRequest represents a company provisioning request. The
// requester identity is resolved by the handler (JWT claims, or UserEmail
// for guest signup flows) and is not trusted from the JSON body alone.
type RegisterCompanyRequest struct {
	OrganizationName string `json:"organization_name" binding:"required,min=2,max=255"`
	FullName         string `json:"full_name" binding:"omitempty,max=255"`
	Email            string `json:"email" binding:"omitempty,email"`
	Phone            string `json:"phone" binding:"omitempty,max=32"`
	Industry         string `json:"industry" binding:"omitempty,max=64"`
	Country          string `json:"country" binding:"omitempty,max=64"`
	City             string `json:"city" binding:"omitempty,max=64"`
	UserEmail        string `json:"user_email" binding:"omitempty,email"`
}

// ValidateIndustry checks the industry against the fixed catalog.
func (r *RegisterCompanyRequest) ValidateIndustry() (bool, string) {
	if !domain.IsValidIndustry(r.Industry) {
		return false, "Invalid industry. Must be one of the supported industry options"
	}
	return true, ""
}

// Provisioning step names, in execution order.
const (
	StepCreateRegistration   = "create-registration"
	StepCreateCompany        = "create-company"
	StepLinkRegistration     = "link-registration"
	StepWarehousePermissions = "warehouse-permissions"
	StepDefaultCustomer      = "default-customer"
	StepCostCenterPermission = "cost-center-permission"
	StepGrantRoles           = "grant-roles"
	StepCompanyPermission    = "company-permission"
)

// Step outcomes.
const (
	StepOutcomeCompleted = "completed"
	StepOutcomeSkipped   = "skipped"
	StepOutcomeFailed    = "failed"
)

// Provisioning run statuses.
const (
	ProvisionCompleted             = "completed"
	ProvisionCompletedWithWarnings = "completed_with_warnings"
)

// StepResult records the outcome of one provisioning step so partial
// failure of secondary steps is observable instead of swallowed.
type StepResult struct {
	Step    string `json:"step"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// RegistrationResponse represents registration data in responses.
type RegistrationResponse struct {
	ID               string `json:"id"`
	OrganizationName string `json:"organization_name"`
	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Industry         string `json:"industry,omitempty"`
	Country          string `json:"country,omitempty"`
	City             string `json:"city,omitempty"`
	Status           string `json:"status"`
	Company          string `json:"company,omitempty"`
	UserEmail        string `json:"user_created"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// RegisterCompanyResponse summarizes a provisioning run.
type RegisterCompanyResponse struct {
	Registration     RegistrationResponse `json:"company_registration"`
	Company          string               `json:"company"`
	CompanyAbbr      string               `json:"company_abbr"`
	DefaultWarehouse string               `json:"default_warehouse,omitempty"`
	DefaultCustomer  string               `json:"default_customer,omitempty"`
	Status           string               `json:"status"`
	Steps            []StepResult         `json:"steps"`
}

// UpdateRegistrationRequest represents a partial registration update.
type UpdateRegistrationRequest struct {
	OrganizationName *string `json:"organization_name" binding:"omitempty,min=2,max=255"`
	FullName         *string `json:"full_name" binding:"omitempty,max=255"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,max=32"`
	Industry         *string `json:"industry" binding:"omitempty,max=64"`
	Country          *string `json:"country" binding:"omitempty,max=64"`
	City             *string `json:"city" binding:"omitempty,max=64"`
}

// Validate checks that at least one field is provided and the industry, if
// present, belongs to the catalog.
func (r *UpdateRegistrationRequest) Validate() (bool, string) {
	if r.OrganizationName == nil && r.FullName == nil && r.Email == nil &&
		r.Phone == nil && r.Industry == nil && r.Country == nil && r.City == nil {
		return false, "At least one field must be provided for update"
	}
	if r.Industry != nil && !domain.IsValidIndustry(*r.Industry) {
		return false, "Invalid industry. Must be one of the supported industry options"
	}
	return true, ""
}

// AssignUserRequest assigns a user to a company.
type AssignUserRequest struct {
	UserEmail   string `json:"user_email" binding:"required,email"`
	CompanyName string `json:"company_name" binding:"omitempty,max=255"`
}

// RemoveUserRequest revokes a user's access to a company.
type RemoveUserRequest struct {
	UserEmail   string `json:"user_email" binding:"required,email"`
	CompanyName string `json:"company_name" binding:"omitempty,max=255"`
}

// AssignUserResponse reports the resulting company permission.
type AssignUserResponse struct {
	User          string `json:"user"`
	Company       string `json:"company"`
	PermissionID  string `json:"permission"`
	AlreadyMember bool   `json:"already_member"`
}

// CompanyUser is one member in a company user listing.
type CompanyUser struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Enabled      bool   `json:"enabled"`
	UserType     string `json:"user_type"`
	PermissionID string `json:"permission_name"`
	IsDefault    bool   `json:"is_default"`
	AssignedOn   string `json:"assigned_on"`
}

// CompanyUsersResponse lists the members of a company.
type CompanyUsersResponse struct {
	Company    string        `json:"company"`
	Owner      *CompanyUser  `json:"owner,omitempty"`
	Users      []CompanyUser `json:"users"`
	TotalUsers int           `json:"total_users"`
}

// UserCompany is one company in a user's company listing.
type UserCompany struct {
	Company      string `json:"company"`
	Country      string `json:"country"`
	Abbr         string `json:"abbr"`
	PermissionID string `json:"permission_name"`
	IsDefault    bool   `json:"is_default"`
	AssignedOn   string `json:"assigned_on"`
}

// UserCompaniesResponse lists the companies a user is assigned to.
type UserCompaniesResponse struct {
	User           string        `json:"user"`
	Companies      []UserCompany `json:"companies"`
	OwnedCompanies []string      `json:"owned_companies"`
	TotalCompanies int           `json:"total_companies"`
}
