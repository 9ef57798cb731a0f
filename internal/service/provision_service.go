package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/draftpos/HavanoCompany/internal/domain"
	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

var (
	ErrOrganizationNameRequired = errors.New("organization name is required")
	ErrUserEmailRequired        = errors.New("user email is required for company registration")
	ErrUserNotFound             = errors.New("user not found")
	ErrDuplicateRegistration    = errors.New("user already has a company registration")
	ErrInvalidIndustry          = errors.New("invalid industry")
	// ErrCompanyContention is returned when company creation kept hitting
	// transient storage conflicts and the retry budget ran out. Distinct
	// from validation and non-transient failures so callers can tell
	// "gave up after contention" apart from "bad input".
	ErrCompanyContention = errors.New("failed to create company due to storage contention")
)

// ProvisionConfig tunes the company-creation retry loop.
type ProvisionConfig struct {
	// MaxAttempts bounds company-creation attempts (first try included)
	MaxAttempts int
	// RetryBaseDelay is the first backoff interval; it doubles per attempt
	RetryBaseDelay time.Duration
}

// DefaultProvisionConfig returns the production retry settings.
func DefaultProvisionConfig() *ProvisionConfig {
	return &ProvisionConfig{
		MaxAttempts:    3,
		RetryBaseDelay: 1 * time.Second,
	}
}

// ProvisionService orchestrates company provisioning: registration record,
// company creation with deadlock-tolerant retry, default permissions and
// role grants for the requester.
type ProvisionService interface {
	// Register provisions a company for the requester. An empty requester
	// means a guest flow; the request must then carry the user email of
	// an already signed-up account.
	Register(ctx context.Context, requester string, req *dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error)
}

type provisionService struct {
	registrations repository.RegistrationRepository
	companies     repository.CompanyRepository
	permissions   repository.PermissionRepository
	users         repository.UserRepository
	resources     repository.ResourceRepository
	cfg           *ProvisionConfig
	log           *logger.Logger
	metrics       *ProvisionMetrics
}

// NewProvisionService creates a new ProvisionService.
func NewProvisionService(
	registrations repository.RegistrationRepository,
	companies repository.CompanyRepository,
	permissions repository.PermissionRepository,
	users repository.UserRepository,
	resources repository.ResourceRepository,
	cfg *ProvisionConfig,
	log *logger.Logger,
	metrics *ProvisionMetrics,
) ProvisionService {
	if cfg == nil {
		cfg = DefaultProvisionConfig()
	}
	if log == nil {
		log = logger.Get()
	}
	return &provisionService{
		registrations: registrations,
		companies:     companies,
		permissions:   permissions,
		users:         users,
		resources:     resources,
		cfg:           cfg,
		log:           log,
		metrics:       metrics,
	}
}

// Register provisions a company for the requester.
//
// Only company creation is retried on transient conflicts; steps after the
// company exists are best-effort and recorded individually in the step
// aggregate, so a partial failure is observable rather than swallowed. A
// registration that ends up without a company link is the signature of a
// run that failed before company creation succeeded.
func (s *provisionService) Register(ctx context.Context, requester string, req *dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error) {
	if strings.TrimSpace(req.OrganizationName) == "" {
		return nil, ErrOrganizationNameRequired
	}

	user := requester
	if user == "" {
		if req.UserEmail == "" {
			return nil, ErrUserEmailRequired
		}
		user = req.UserEmail
	}

	account, err := s.users.GetByEmail(ctx, user)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	exists, err := s.registrations.ExistsByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRegistration
	}

	if !domain.IsValidIndustry(req.Industry) {
		return nil, ErrInvalidIndustry
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = account.FullName
	}
	email := req.Email
	if email == "" {
		email = account.Email
	}

	now := time.Now()
	reg := &domain.Registration{
		ID:               uuid.New().String(),
		UserEmail:        user,
		OrganizationName: req.OrganizationName,
		FullName:         fullName,
		Email:            email,
		Phone:            req.Phone,
		Industry:         req.Industry,
		Country:          req.Country,
		City:             req.City,
		Status:           domain.StatusCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}

	steps := []dto.StepResult{{Step: dto.StepCreateRegistration, Outcome: dto.StepOutcomeCompleted}}

	abbr := domain.DeriveAbbr(req.OrganizationName, user, now)
	company, err := s.createCompanyWithRetry(ctx, req.OrganizationName, req.Country, abbr)
	if err != nil {
		// The registration stays behind without a company link as the
		// auditable trace of the failed run.
		return nil, err
	}
	steps = append(steps, dto.StepResult{Step: dto.StepCreateCompany, Outcome: dto.StepOutcomeCompleted})

	reg.CompanyName = company.Name
	s.runStep(ctx, &steps, dto.StepLinkRegistration, func() error {
		return s.registrations.Update(ctx, reg)
	})

	var defaultWarehouse string
	s.runStep(ctx, &steps, dto.StepWarehousePermissions, func() error {
		name, err := s.grantWarehousePermissions(ctx, user, company.Name)
		defaultWarehouse = name
		return err
	})

	var defaultCustomer string
	s.runStep(ctx, &steps, dto.StepDefaultCustomer, func() error {
		name, err := s.grantDefaultCustomer(ctx, user, req.OrganizationName)
		defaultCustomer = name
		return err
	})

	s.runStep(ctx, &steps, dto.StepCostCenterPermission, func() error {
		return s.grantDefaultCostCenter(ctx, user, company.Name)
	})

	s.runStep(ctx, &steps, dto.StepGrantRoles, func() error {
		return s.grantRoles(ctx, user)
	})

	s.runStep(ctx, &steps, dto.StepCompanyPermission, func() error {
		return s.grantPermission(ctx, user, domain.PermissionCompany, company.Name, true)
	})

	status := dto.ProvisionCompleted
	for _, step := range steps {
		if step.Outcome == dto.StepOutcomeFailed {
			status = dto.ProvisionCompletedWithWarnings
			break
		}
	}

	s.log.InfoContext(ctx, "company provisioned",
		zap.String("company", company.Name),
		zap.String("abbr", company.Abbr),
		zap.String("user", user),
		zap.String("status", status),
	)
	s.metrics.Provisioned(ctx, status)

	return &dto.RegisterCompanyResponse{
		Registration:     toRegistrationResponse(reg),
		Company:          company.Name,
		CompanyAbbr:      company.Abbr,
		DefaultWarehouse: defaultWarehouse,
		DefaultCustomer:  defaultCustomer,
		Status:           status,
		Steps:            steps,
	}, nil
}

// createCompanyWithRetry creates the company, retrying on transient
// storage conflicts with exponential backoff. Non-transient failures
// abort immediately; exhausting the budget surfaces ErrCompanyContention.
func (s *provisionService) createCompanyWithRetry(ctx context.Context, name, country, abbr string) (*domain.Company, error) {
	if country == "" {
		country = "United States"
	}

	operation := func() (*domain.Company, error) {
		s.metrics.Attempt(ctx)
		now := time.Now()
		company := &domain.Company{
			ID:        uuid.New().String(),
			Name:      name,
			Abbr:      abbr,
			Currency:  "USD",
			Country:   country,
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := s.companies.Create(ctx, company)
		if err == nil {
			return company, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.Conflict(ctx)
			s.log.WarnContext(ctx, "storage conflict creating company, will retry",
				zap.String("company", name),
				zap.Error(err),
			)
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryBaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	company, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.cfg.MaxAttempts)),
	)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.ErrorContext(ctx, "giving up creating company after repeated conflicts",
				zap.String("company", name),
				zap.Int("attempts", s.cfg.MaxAttempts),
			)
			return nil, ErrCompanyContention
		}
		return nil, err
	}
	return company, nil
}

// runStep executes a best-effort step and records its outcome. Failures
// are logged and recorded but do not abort the workflow.
func (s *provisionService) runStep(ctx context.Context, steps *[]dto.StepResult, name string, fn func() error) {
	if err := fn(); err != nil {
		s.log.ErrorContext(ctx, "provisioning step failed",
			zap.String("step", name),
			zap.Error(err),
		)
		*steps = append(*steps, dto.StepResult{Step: name, Outcome: dto.StepOutcomeFailed, Detail: err.Error()})
		return
	}
	*steps = append(*steps, dto.StepResult{Step: name, Outcome: dto.StepOutcomeCompleted})
}

// grantWarehousePermissions grants a default permission for the company's
// "Stores" warehouse and non-default permissions for every other one.
// Returns the default warehouse name.
func (s *provisionService) grantWarehousePermissions(ctx context.Context, user, companyName string) (string, error) {
	defaultWarehouse, err := s.resources.FindWarehouseByPrefix(ctx, companyName, domain.DefaultWarehousePrefix)
	if err != nil {
		return "", err
	}
	if defaultWarehouse == nil {
		return "", fmt.Errorf("no warehouse found starting with %q for company %q", domain.DefaultWarehousePrefix, companyName)
	}

	if err := s.grantPermission(ctx, user, domain.PermissionWarehouse, defaultWarehouse.Name, true); err != nil {
		return "", err
	}

	warehouses, err := s.resources.ListWarehouses(ctx, companyName)
	if err != nil {
		return defaultWarehouse.Name, err
	}
	for _, w := range warehouses {
		if w.Name == defaultWarehouse.Name {
			continue
		}
		if err := s.grantPermission(ctx, user, domain.PermissionWarehouse, w.Name, false); err != nil {
			s.log.ErrorContext(ctx, "failed to grant warehouse permission",
				zap.String("warehouse", w.Name),
				zap.Error(err),
			)
		}
	}
	return defaultWarehouse.Name, nil
}

// grantDefaultCustomer creates (or reuses) the "cust-<org>" customer and
// grants it as the requester's default. Returns the customer name.
func (s *provisionService) grantDefaultCustomer(ctx context.Context, user, organizationName string) (string, error) {
	name := "cust-" + organizationName

	customer, err := s.resources.GetCustomerByName(ctx, name)
	if err != nil {
		return "", err
	}
	if customer == nil {
		customer = &domain.Customer{
			ID:            uuid.New().String(),
			Name:          name,
			CustomerType:  "Individual",
			CustomerGroup: "All Customer Groups",
			Territory:     "All Territories",
			CreatedAt:     time.Now(),
		}
		if err := s.resources.CreateCustomer(ctx, customer); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return "", err
		}
	}

	if err := s.grantPermission(ctx, user, domain.PermissionCustomer, name, true); err != nil {
		return "", err
	}
	return name, nil
}

// grantDefaultCostCenter grants the company cost center whose name starts
// with "Main" (case-insensitive) as the requester's default.
func (s *provisionService) grantDefaultCostCenter(ctx context.Context, user, companyName string) error {
	centers, err := s.resources.ListCostCenters(ctx, companyName)
	if err != nil {
		return err
	}
	for _, cc := range centers {
		if len(cc.Name) >= len(domain.DefaultCostCenterPrefix) &&
			strings.EqualFold(cc.Name[:len(domain.DefaultCostCenterPrefix)], domain.DefaultCostCenterPrefix) {
			return s.grantPermission(ctx, user, domain.PermissionCostCenter, cc.Name, true)
		}
	}
	return fmt.Errorf("no cost center found starting with %q for company %q", domain.DefaultCostCenterPrefix, companyName)
}

// grantRoles grants the fixed role catalog and promotes the account type.
func (s *provisionService) grantRoles(ctx context.Context, user string) error {
	if err := s.users.SetUserType(ctx, user, domain.UserTypeSystemUser); err != nil {
		return err
	}
	for _, role := range domain.ProvisioningRoles {
		granted, err := s.users.GrantRole(ctx, user, role)
		if err != nil {
			return err
		}
		if granted {
			s.log.DebugContext(ctx, "role granted", zap.String("user", user), zap.String("role", role))
		}
	}
	return nil
}

// grantPermission writes a permission grant, treating an existing grant as
// success so re-runs stay idempotent.
func (s *provisionService) grantPermission(ctx context.Context, user string, allow domain.PermissionKind, forValue string, isDefault bool) error {
	err := s.permissions.Create(ctx, &domain.UserPermission{
		ID:         uuid.New().String(),
		UserEmail:  user,
		Allow:      allow,
		ForValue:   forValue,
		ApplyToAll: true,
		IsDefault:  isDefault,
		CreatedAt:  time.Now(),
	})
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	return nil
}

func toRegistrationResponse(reg *domain.Registration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:               reg.ID,
		OrganizationName: reg.OrganizationName,
		FullName:         reg.FullName,
		Email:            reg.Email,
		Phone:            reg.Phone,
		Industry:         reg.Industry,
		Country:          reg.Country,
		City:             reg.City,
		Status:           string(reg.Status),
		Company:          reg.CompanyName,
		UserEmail:        reg.UserEmail,
		CreatedAt:        reg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        reg.UpdatedAt.Format(time.RFC3339),
	}
}
