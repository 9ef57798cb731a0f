package domain

import (
	"time"
)

// User account types. Provisioning promotes the requester from a website
// account to a full system account.
const (
	UserTypeWebsiteUser = "Website User"
	UserTypeSystemUser  = "System User"
)

// Well-known role names.
const (
	RoleSystemManager = "System Manager"
	RoleCompanyUser   = "Company User Role"
	RoleDeskUser      = "Desk User"
)

// ProvisioningRoles is the fixed catalog of roles granted to a requester
// when their company is provisioned. Granting is idempotent per role.
var ProvisioningRoles = []string{
	RoleCompanyUser,
	RoleSystemManager,
	"Accounts Manager",
	"Sales Manager",
	"Purchase Manager",
	"Stock Manager",
	"HR Manager",
	"Manufacturing Manager",
	"Projects Manager",
	"Support Team",
	"Website Manager",
	"Report Manager",
	"Blogger",
	"Knowledge Base User",
	"Helpdesk User",
	"Employee",
	"Employee Self Service",
}

// User represents an account known to the service.
type User struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
