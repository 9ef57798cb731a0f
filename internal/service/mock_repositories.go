package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/repository"
)

// In-memory repository fakes for service tests. Each exposes failure
// knobs so workflows can be driven through their error paths.

// MockRegistrationRepository is an in-memory RegistrationRepository.
type MockRegistrationRepository struct {
	mu            sync.RWMutex
	registrations map[string]*domain.Registration // keyed by ID
	CreateErr     error
	UpdateErr     error
}

// NewMockRegistrationRepository creates a new MockRegistrationRepository.
func NewMockRegistrationRepository() *MockRegistrationRepository {
	return &MockRegistrationRepository{registrations: make(map[string]*domain.Registration)}
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.registrations {
		if existing.UserEmail == reg.UserEmail {
			return domain.ErrAlreadyExists
		}
	}
	clone := *reg
	m.registrations[reg.ID] = &clone
	return nil
}

func (m *MockRegistrationRepository) GetByUser(ctx context.Context, userEmail string) (*domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.registrations {
		if reg.UserEmail == userEmail {
			clone := *reg
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockRegistrationRepository) GetByCompany(ctx context.Context, companyName string) (*domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.registrations {
		if reg.CompanyName == companyName {
			clone := *reg
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ExistsByUser(ctx context.Context, userEmail string) (bool, error) {
	reg, err := m.GetByUser(ctx, userEmail)
	return reg != nil, err
}

func (m *MockRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[reg.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *reg
	m.registrations[reg.ID] = &clone
	return nil
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.registrations, id)
	return nil
}

// Count reports how many registrations are stored.
func (m *MockRegistrationRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.registrations)
}

// MockCompanyRepository is an in-memory CompanyRepository. It seeds the
// company's warehouses and cost center into the linked resource mock the
// same way the real transaction does. FailTimes makes the first N Create
// calls fail with FailWith (domain.ErrConflict when unset) to simulate
// transient storage conflicts.
type MockCompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company // keyed by name
	resources *MockResourceRepository
	FailTimes int
	FailWith  error
	Attempts  int
}

// NewMockCompanyRepository creates a new MockCompanyRepository.
func NewMockCompanyRepository(resources *MockResourceRepository) *MockCompanyRepository {
	return &MockCompanyRepository{
		companies: make(map[string]*domain.Company),
		resources: resources,
	}
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if m.FailTimes > 0 {
		m.FailTimes--
		if m.FailWith != nil {
			return m.FailWith
		}
		return domain.ErrConflict
	}
	if _, ok := m.companies[company.Name]; ok {
		return domain.ErrAlreadyExists
	}
	for _, existing := range m.companies {
		if existing.Abbr == company.Abbr {
			return domain.ErrAlreadyExists
		}
	}
	clone := *company
	m.companies[company.Name] = &clone
	if m.resources != nil {
		m.resources.seedCompany(company.Name, company.Abbr)
	}
	return nil
}

func (m *MockCompanyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	company, ok := m.companies[name]
	if !ok {
		return nil, nil
	}
	clone := *company
	return &clone, nil
}

func (m *MockCompanyRepository) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.companies[name]
	return ok, nil
}

func (m *MockCompanyRepository) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[name]; !ok {
		return domain.ErrNotFound
	}
	delete(m.companies, name)
	return nil
}

// Count reports how many companies are stored.
func (m *MockCompanyRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.companies)
}

// MockPermissionRepository is an in-memory PermissionRepository.
// CreateErrFor injects a failure for grants of a given kind.
type MockPermissionRepository struct {
	mu           sync.RWMutex
	perms        []*domain.UserPermission
	CreateErrFor map[domain.PermissionKind]error
}

// NewMockPermissionRepository creates a new MockPermissionRepository.
func NewMockPermissionRepository() *MockPermissionRepository {
	return &MockPermissionRepository{perms: make([]*domain.UserPermission, 0)}
}

func (m *MockPermissionRepository) Create(ctx context.Context, perm *domain.UserPermission) error {
	if err := m.CreateErrFor[perm.Allow]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.perms {
		if existing.UserEmail == perm.UserEmail && existing.Allow == perm.Allow && existing.ForValue == perm.ForValue {
			return domain.ErrAlreadyExists
		}
		if perm.IsDefault && existing.IsDefault && existing.UserEmail == perm.UserEmail && existing.Allow == perm.Allow {
			return domain.ErrAlreadyExists
		}
	}
	clone := *perm
	m.perms = append(m.perms, &clone)
	return nil
}

func (m *MockPermissionRepository) Exists(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (bool, error) {
	perm, err := m.Get(ctx, userEmail, allow, forValue)
	return perm != nil, err
}

func (m *MockPermissionRepository) Get(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) (*domain.UserPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, perm := range m.perms {
		if perm.UserEmail == userEmail && perm.Allow == allow && perm.ForValue == forValue {
			clone := *perm
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockPermissionRepository) ListByUser(ctx context.Context, userEmail string, allow domain.PermissionKind) ([]*domain.UserPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.UserPermission, 0)
	for _, perm := range m.perms {
		if perm.UserEmail == userEmail && perm.Allow == allow {
			clone := *perm
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *MockPermissionRepository) ListByValue(ctx context.Context, allow domain.PermissionKind, forValue string) ([]*domain.UserPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.UserPermission, 0)
	for _, perm := range m.perms {
		if perm.Allow == allow && perm.ForValue == forValue {
			clone := *perm
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *MockPermissionRepository) GetDefault(ctx context.Context, userEmail string, allow domain.PermissionKind) (*domain.UserPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, perm := range m.perms {
		if perm.UserEmail == userEmail && perm.Allow == allow && perm.IsDefault {
			clone := *perm
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockPermissionRepository) Delete(ctx context.Context, userEmail string, allow domain.PermissionKind, forValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, perm := range m.perms {
		if perm.UserEmail == userEmail && perm.Allow == allow && perm.ForValue == forValue {
			m.perms = append(m.perms[:i], m.perms[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	roles map[string]map[string]bool
}

// NewMockUserRepository creates a new MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
		roles: make(map[string]map[string]bool),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return domain.ErrAlreadyExists
	}
	clone := *user
	m.users[user.Email] = &clone
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *MockUserRepository) SetUserType(ctx context.Context, email, userType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return domain.ErrNotFound
	}
	user.UserType = userType
	user.UpdatedAt = time.Now()
	return nil
}

// SetEnabled toggles an account for tests.
func (m *MockUserRepository) SetEnabled(email string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[email]; ok {
		user.Enabled = enabled
	}
}

func (m *MockUserRepository) GrantRole(ctx context.Context, email, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[email] == nil {
		m.roles[email] = make(map[string]bool)
	}
	if m.roles[email][role] {
		return false, nil
	}
	m.roles[email][role] = true
	return true, nil
}

func (m *MockUserRepository) HasRole(ctx context.Context, email, role string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roles[email][role], nil
}

func (m *MockUserRepository) ListRoles(ctx context.Context, email string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roles := make([]string, 0, len(m.roles[email]))
	for role := range m.roles[email] {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// MockResourceRepository is an in-memory ResourceRepository.
type MockResourceRepository struct {
	mu          sync.RWMutex
	warehouses  map[string][]*domain.Warehouse // keyed by company name
	costCenters map[string][]*domain.CostCenter
	customers   map[string]*domain.Customer // keyed by customer name

	CreateCustomerErr error
}

// NewMockResourceRepository creates a new MockResourceRepository.
func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{
		warehouses:  make(map[string][]*domain.Warehouse),
		costCenters: make(map[string][]*domain.CostCenter),
		customers:   make(map[string]*domain.Customer),
	}
}

// seedCompany mirrors the seed rows company creation writes.
func (m *MockResourceRepository) seedCompany(companyName, abbr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, name := range domain.SeedWarehouseNames {
		m.warehouses[companyName] = append(m.warehouses[companyName], &domain.Warehouse{
			ID:          uuid.New().String(),
			Name:        name + " - " + abbr,
			CompanyName: companyName,
			CreatedAt:   now,
		})
	}
	m.costCenters[companyName] = append(m.costCenters[companyName], &domain.CostCenter{
		ID:          uuid.New().String(),
		Name:        "Main - " + abbr,
		CompanyName: companyName,
		CreatedAt:   now,
	})
}

// DropCostCenters removes a company's cost centers to force step failures.
func (m *MockResourceRepository) DropCostCenters(companyName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.costCenters, companyName)
}

func (m *MockResourceRepository) ListWarehouses(ctx context.Context, companyName string) ([]*domain.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Warehouse, 0, len(m.warehouses[companyName]))
	for _, w := range m.warehouses[companyName] {
		clone := *w
		out = append(out, &clone)
	}
	return out, nil
}

func (m *MockResourceRepository) FindWarehouseByPrefix(ctx context.Context, companyName, prefix string) (*domain.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.warehouses[companyName] {
		if strings.HasPrefix(w.Name, prefix) {
			clone := *w
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MockResourceRepository) GetCustomerByName(ctx context.Context, name string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customer, ok := m.customers[name]
	if !ok {
		return nil, nil
	}
	clone := *customer
	return &clone, nil
}

func (m *MockResourceRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	if m.CreateCustomerErr != nil {
		return m.CreateCustomerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customer.Name]; ok {
		return domain.ErrAlreadyExists
	}
	clone := *customer
	m.customers[customer.Name] = &clone
	return nil
}

func (m *MockResourceRepository) ListCostCenters(ctx context.Context, companyName string) ([]*domain.CostCenter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.CostCenter, 0, len(m.costCenters[companyName]))
	for _, cc := range m.costCenters[companyName] {
		clone := *cc
		out = append(out, &clone)
	}
	return out, nil
}

// MockReportRepository is an in-memory ReportRepository returning canned
// aggregates.
type MockReportRepository struct {
	Summary    *repository.InvoiceSummary
	Totals     []*repository.CostCenterTotals
	LastFilter *repository.InvoiceSummaryFilter
}

// NewMockReportRepository creates a new MockReportRepository.
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{Summary: &repository.InvoiceSummary{}}
}

func (m *MockReportRepository) InvoiceSummary(ctx context.Context, filter *repository.InvoiceSummaryFilter) (*repository.InvoiceSummary, error) {
	m.LastFilter = filter
	clone := *m.Summary
	return &clone, nil
}

func (m *MockReportRepository) CostCenterTotals(ctx context.Context, companyName string) ([]*repository.CostCenterTotals, error) {
	out := make([]*repository.CostCenterTotals, 0, len(m.Totals))
	for _, t := range m.Totals {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}
