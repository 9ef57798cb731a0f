package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/draftpos/HavanoCompany/internal/di"
	"github.com/draftpos/HavanoCompany/internal/service"
	"github.com/draftpos/HavanoCompany/pkg/config"
	"github.com/draftpos/HavanoCompany/pkg/database"
	"github.com/draftpos/HavanoCompany/pkg/logger"
	"github.com/draftpos/HavanoCompany/pkg/middleware"
	"github.com/draftpos/HavanoCompany/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = cfg.App.Name
	logCfg.Development = cfg.IsDevelopment()
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	logCfg.OTLPEnabled = cfg.OTel.Enabled
	logCfg.OTLPEndpoint = cfg.OTel.CollectorAddr
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	logg := logger.Get()
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		logg.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logg.Error("telemetry shutdown failed", zap.Error(err))
		}
	}()

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.Database.Host
	pgCfg.Port = cfg.Database.Port
	pgCfg.User = cfg.Database.User
	pgCfg.Password = cfg.Database.Password
	pgCfg.Database = cfg.Database.DBName
	pgCfg.SSLMode = cfg.Database.SSLMode
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	db, err := database.NewPostgres(ctx, pgCfg)
	if err != nil {
		logg.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	logg.Info("postgres connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	metrics, err := service.NewProvisionMetrics()
	if err != nil {
		logg.Fatal("failed to register metrics", zap.Error(err))
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:  db,
		Log: logg,
		ProvisionConfig: &service.ProvisionConfig{
			MaxAttempts:    cfg.Provision.MaxAttempts,
			RetryBaseDelay: cfg.Provision.RetryBaseDelay,
		},
		AuthConfig: &service.AuthConfig{
			JWTSecret:      cfg.JWT.Secret,
			AccessTokenTTL: cfg.JWT.AccessTokenTTL,
			Issuer:         cfg.JWT.Issuer,
		},
		Metrics: metrics,
	})

	auditLogger := middleware.NewAuditLogger(middleware.DefaultAuditConfig(db.Pool()))
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logg.Error("audit logger close failed", zap.Error(err))
		}
	}()

	router := setupRouter(cfg, container, auditLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown failed", zap.Error(err))
	}

	logg.Info("shutdown complete")
}

func setupRouter(cfg *config.Config, c *di.Container, audit *middleware.AuditLogger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	jwtCfg := &middleware.JWTConfig{Secret: cfg.JWT.Secret}

	api := router.Group("/api/v1")
	api.Use(middleware.AuditMiddleware(audit))

	// Public routes
	api.POST("/auth/signup", c.AccountHandler.Signup)
	api.POST("/auth/login", c.AccountHandler.Login)
	api.GET("/industries", c.AccountHandler.IndustryOptions)

	// Registration works for both authenticated users and guests
	api.POST("/companies/register", middleware.OptionalJWTMiddleware(jwtCfg), c.CompanyHandler.Register)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware(jwtCfg))
	{
		protected.GET("/registrations/me", c.RegistrationHandler.Get)
		protected.PATCH("/registrations/me", c.RegistrationHandler.Update)
		protected.DELETE("/registrations/me", c.RegistrationHandler.Delete)

		protected.POST("/companies/users/assign", c.MembershipHandler.AssignUser)
		protected.POST("/companies/users/remove", c.MembershipHandler.RemoveUser)
		protected.GET("/companies/users", c.MembershipHandler.CompanyUsers)

		protected.GET("/users/me/companies", c.MembershipHandler.UserCompanies)
		protected.GET("/users/me/profile", c.AccountHandler.Profile)

		protected.POST("/reports/invoice-summary", c.ReportHandler.InvoiceSummary)
		protected.GET("/reports/profit-and-loss", c.ReportHandler.ProfitAndLoss)
	}

	return router
}
