package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/family-ledger/internal/domain/auth"
	authhandler "github.com/FACorreiaa/family-ledger/internal/domain/auth/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/category"
	categoryhandler "github.com/FACorreiaa/family-ledger/internal/domain/category/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/dashboard"
	dashboardhandler "github.com/FACorreiaa/family-ledger/internal/domain/dashboard/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/expense"
	expensehandler "github.com/FACorreiaa/family-ledger/internal/domain/expense/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/imports"
	importshandler "github.com/FACorreiaa/family-ledger/internal/domain/imports/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/income"
	incomehandler "github.com/FACorreiaa/family-ledger/internal/domain/income/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/paymentmethod"
	paymentmethodhandler "github.com/FACorreiaa/family-ledger/internal/domain/paymentmethod/handler"
	"github.com/FACorreiaa/family-ledger/internal/domain/settings"
	settingshandler "github.com/FACorreiaa/family-ledger/internal/domain/settings/handler"
	"github.com/FACorreiaa/family-ledger/pkg/config"
	"github.com/FACorreiaa/family-ledger/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Services
	TokenManager   *auth.TokenManager
	AuthService    *auth.Service
	SettingsSvc    *settings.Service
	CategorySvc    *category.Service
	PaymentMethods *paymentmethod.Service
	ExpenseSvc     *expense.Service
	IncomeSvc      *income.Service
	DashboardSvc   *dashboard.Service
	ImportSvc      *imports.Service

	// Handlers
	AuthHandler *authhandler.AuthHandler
	APIHandlers []RouteRegistrar
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase connects and applies pending migrations.
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        int32(d.Config.Database.MinConns),
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		d.DB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initServices() {
	pool := d.DB.Pool

	d.TokenManager = auth.NewTokenManager(d.Config.Auth.JWTSecret, d.Config.Auth.TokenTTL)
	d.AuthService = auth.NewService(auth.NewRepository(pool), d.TokenManager, d.Logger)

	d.SettingsSvc = settings.NewService(settings.NewRepository(pool), d.Logger)
	d.CategorySvc = category.NewService(category.NewRepository(pool), d.Logger)
	d.PaymentMethods = paymentmethod.NewService(paymentmethod.NewRepository(pool), d.Logger)
	d.ExpenseSvc = expense.NewService(expense.NewRepository(pool), d.Logger)
	d.IncomeSvc = income.NewService(income.NewRepository(pool), d.Logger)
	d.DashboardSvc = dashboard.NewService(dashboard.NewRepository(pool), d.SettingsSvc, d.Logger)
	d.ImportSvc = imports.NewService(imports.NewRepository(pool), d.Logger)

	d.Logger.Info("services initialized")
}

func (d *Dependencies) initHandlers() {
	d.AuthHandler = authhandler.NewAuthHandler(d.AuthService, d.Logger)
	d.APIHandlers = []RouteRegistrar{
		categoryhandler.NewCategoryHandler(d.CategorySvc, d.Logger),
		paymentmethodhandler.NewPaymentMethodHandler(d.PaymentMethods, d.Logger),
		expensehandler.NewExpenseHandler(d.ExpenseSvc, d.Logger),
		incomehandler.NewIncomeHandler(d.IncomeSvc, d.Logger),
		settingshandler.NewSettingsHandler(d.SettingsSvc, d.Logger),
		dashboardhandler.NewDashboardHandler(d.DashboardSvc, d.Logger),
		importshandler.NewImportHandler(d.ImportSvc, d.Logger, d.Config.Server.MaxUploadBytes),
	}

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
