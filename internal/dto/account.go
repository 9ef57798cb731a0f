package dto

// SignupRequest represents a new account request.
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required,max=128"`
	LastName  string `json:"last_name" binding:"omitempty,max=128"`
	FullName  string `json:"full_name" binding:"omitempty,max=255"`
}

// SignupResponse represents the created account.
type SignupResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name"`
}

// LoginRequest represents a credential login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed access token and basic user info.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	UserType    string `json:"user_type"`
	Company     string `json:"company,omitempty"`
}

// ProfileResponse is the post-login summary: user fields plus the default
// scopes granted during provisioning and the registration state.
type ProfileResponse struct {
	Email             string                `json:"email"`
	FirstName         string                `json:"first_name"`
	LastName          string                `json:"last_name,omitempty"`
	FullName          string                `json:"full_name"`
	UserType          string                `json:"user_type"`
	Roles             []string              `json:"roles"`
	DefaultWarehouse  string                `json:"warehouse,omitempty"`
	DefaultCostCenter string                `json:"cost_center,omitempty"`
	DefaultCustomer   string                `json:"default_customer,omitempty"`
	Warehouses        []string              `json:"warehouses"`
	CostCenters       []string              `json:"cost_centers"`
	Company           string                `json:"company,omitempty"`
	HasRegistration   bool                  `json:"has_company_registration"`
	Registration      *RegistrationResponse `json:"company_registration,omitempty"`
	CompanyMessage    string                `json:"company_message,omitempty"`
}

// IndustryOptionsResponse lists the valid industry values.
type IndustryOptionsResponse struct {
	Industries []string `json:"industries"`
}
