package di

import (
	"github.com/draftpos/HavanoCompany/internal/handler"
	"github.com/draftpos/HavanoCompany/internal/repository"
	"github.com/draftpos/HavanoCompany/internal/service"
	"github.com/draftpos/HavanoCompany/pkg/database"
	"github.com/draftpos/HavanoCompany/pkg/logger"
)

// Container holds all dependencies for the provisioning service
type Container struct {
	// Infrastructure
	DB  *database.PostgresDB
	Log *logger.Logger

	// Repositories
	RegistrationRepo repository.RegistrationRepository
	CompanyRepo      repository.CompanyRepository
	PermissionRepo   repository.PermissionRepository
	UserRepo         repository.UserRepository
	ResourceRepo     repository.ResourceRepository
	ReportRepo       repository.ReportRepository

	// Services
	ProvisionService    service.ProvisionService
	RegistrationService service.RegistrationService
	MembershipService   service.MembershipService
	AccountService      service.AccountService
	AuthService         service.AuthService
	ReportService       service.ReportService

	// Handlers
	HealthHandler       *handler.HealthHandler
	CompanyHandler      *handler.CompanyHandler
	RegistrationHandler *handler.RegistrationHandler
	MembershipHandler   *handler.MembershipHandler
	AccountHandler      *handler.AccountHandler
	ReportHandler       *handler.ReportHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Log             *logger.Logger
	ProvisionConfig *service.ProvisionConfig
	AuthConfig      *service.AuthConfig
	Metrics         *service.ProvisionMetrics
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	pool := cfg.DB.Pool()

	c := &Container{
		DB:               cfg.DB,
		Log:              cfg.Log,
		RegistrationRepo: repository.NewPostgresRegistrationRepository(pool),
		CompanyRepo:      repository.NewPostgresCompanyRepository(pool),
		PermissionRepo:   repository.NewPostgresPermissionRepository(pool),
		UserRepo:         repository.NewPostgresUserRepository(pool),
		ResourceRepo:     repository.NewPostgresResourceRepository(pool),
		ReportRepo:       repository.NewPostgresReportRepository(pool),
	}

	// Initialize services
	c.ProvisionService = service.NewProvisionService(
		c.RegistrationRepo,
		c.CompanyRepo,
		c.PermissionRepo,
		c.UserRepo,
		c.ResourceRepo,
		cfg.ProvisionConfig,
		cfg.Log,
		cfg.Metrics,
	)
	c.RegistrationService = service.NewRegistrationService(c.RegistrationRepo, cfg.Log)
	c.MembershipService = service.NewMembershipService(
		c.RegistrationRepo,
		c.CompanyRepo,
		c.PermissionRepo,
		c.UserRepo,
		cfg.Log,
	)
	c.AccountService = service.NewAccountService(c.UserRepo, c.RegistrationRepo, c.PermissionRepo, cfg.Log)
	c.AuthService = service.NewAuthService(c.UserRepo, c.PermissionRepo, cfg.AuthConfig, cfg.Log)
	c.ReportService = service.NewReportService(c.ReportRepo, c.PermissionRepo, c.UserRepo, cfg.Log)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB)
	c.CompanyHandler = handler.NewCompanyHandler(c.ProvisionService)
	c.RegistrationHandler = handler.NewRegistrationHandler(c.RegistrationService)
	c.MembershipHandler = handler.NewMembershipHandler(c.MembershipService)
	c.AccountHandler = handler.NewAccountHandler(c.AccountService, c.AuthService)
	c.ReportHandler = handler.NewReportHandler(c.ReportService)

	return c
}
