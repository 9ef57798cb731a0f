package domain

import (
	"time"
)

// PermissionKind is the resource kind a user permission scopes.
type PermissionKind string

const (
	PermissionCompany    PermissionKind = "Company"
	PermissionWarehouse  PermissionKind = "Warehouse"
	PermissionCustomer   PermissionKind = "Customer"
	PermissionCostCenter PermissionKind = "Cost Center"
)

// UserPermission binds a user to an allowed value of a resource kind. A
// user may hold many permissions per kind but at most one marked default.
type UserPermission struct {
	ID         string         `json:"id"`
	UserEmail  string         `json:"user"`
	Allow      PermissionKind `json:"allow"`
	ForValue   string         `json:"for_value"`
	ApplyToAll bool           `json:"apply_to_all_doctypes"`
	IsDefault  bool           `json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
}
