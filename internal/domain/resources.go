package domain

import (
	"time"
)

// DefaultWarehousePrefix selects the warehouse that becomes the requester's
// default scope after provisioning.
const DefaultWarehousePrefix = "Stores"

// DefaultCostCenterPrefix selects the company cost center used as the
// requester's default (matched case-insensitively).
const DefaultCostCenterPrefix = "Main"

// SeedWarehouseNames are the warehouses created alongside a new company,
// each suffixed with " - <abbr>".
var SeedWarehouseNames = []string{
	"Stores",
	"Work In Progress",
	"Finished Goods",
}

// Warehouse is a stock location belonging to a company.
type Warehouse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customer is a billing party. Provisioning creates one per company,
// named "cust-<organization name>", reused if it already exists.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"customer_name"`
	CustomerType  string    `json:"customer_type"`
	CustomerGroup string    `json:"customer_group"`
	Territory     string    `json:"territory"`
	CostCenter    string    `json:"cost_center,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CostCenter is an accounting dimension belonging to a company.
type CostCenter struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company"`
	CreatedAt   time.Time `json:"created_at"`
}
