package domain

import (
	"fmt"
	"strings"
	"time"
)

// RegistrationStatus is the lifecycle status of a company registration.
type RegistrationStatus string

const (
	// StatusCreated is the only status a registration can be created with.
	StatusCreated RegistrationStatus = "Created"
)

// Industries a company can register under. Requests carrying any other
// value are rejected before side effects happen.
var ValidIndustries = []string{
	"Retail grocery",
	"Hardshop",
	"Butchery",
	"Ressturant",
	"Bar",
	"Other Retail",
	"Other",
}

// IsValidIndustry reports whether industry belongs to the fixed catalog.
// The empty string is valid because industry is optional.
func IsValidIndustry(industry string) bool {
	if industry == "" {
		return true
	}
	for _, v := range ValidIndustries {
		if v == industry {
			return true
		}
	}
	return false
}

// Company is an isolated organizational unit under which all business
// records (warehouses, customers, cost centers, invoices) are scoped.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Abbr      string    `json:"abbr"`
	Currency  string    `json:"currency"`
	Country   string    `json:"country"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registration records who requested company provisioning and its outcome.
// A registration with an empty CompanyName is the observable signature of a
// run that failed before the company was created.
type Registration struct {
	ID               string             `json:"id"`
	UserEmail        string             `json:"user_email"`
	OrganizationName string             `json:"organization_name"`
	FullName         string             `json:"full_name,omitempty"`
	Email            string             `json:"email,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	Industry         string             `json:"industry,omitempty"`
	Country          string             `json:"country,omitempty"`
	City             string             `json:"city,omitempty"`
	Status           RegistrationStatus `json:"status"`
	CompanyName      string             `json:"company,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// DeriveAbbr builds a company abbreviation from the organization name, the
// requester identity and a timestamp. The trailing digits disambiguate
// otherwise colliding prefixes; the abbr column still carries a unique
// constraint as the source of truth.
func DeriveAbbr(organizationName, userEmail string, now time.Time) string {
	org := strings.ToUpper(prefix(organizationName, 3))
	usr := prefix(userEmail, 3)
	nanos := fmt.Sprintf("%d", now.UnixNano())
	return org + usr + nanos[len(nanos)-4:]
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return string(r)
	}
	return string(r[:n])
}
