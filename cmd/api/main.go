package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/srm/internal/auth"
	"github.com/BradenHooton/srm/internal/background"
	"github.com/BradenHooton/srm/internal/config"
	"github.com/BradenHooton/srm/internal/database"
	"github.com/BradenHooton/srm/internal/forms"
	"github.com/BradenHooton/srm/internal/handlers"
	middlewareCustom "github.com/BradenHooton/srm/internal/middleware"
	"github.com/BradenHooton/srm/internal/repositories"
	"github.com/BradenHooton/srm/internal/routes"
	"github.com/BradenHooton/srm/internal/services"
	"github.com/BradenHooton/srm/internal/store"
	"github.com/BradenHooton/srm/internal/wizard"
	pkghttp "github.com/BradenHooton/srm/pkg/http"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize database
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.DSN(), logger); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Expiring store for the login guard and wizard sessions
	sweepers := map[string]background.Sweeper{}
	var kv store.ExpiringStore
	if cfg.Store.RedisURL != "" {
		client, err := store.NewRedisClient(ctx, cfg.Store.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		kv = store.NewRedisStore(client, cfg.Store.KeyPrefix)
		logger.Info("using redis store")
	} else {
		memory := store.NewMemoryStore()
		kv = memory
		sweepers["memory_store"] = memory
		logger.Warn("REDIS_URL not set, using in-memory store; lockouts and wizard progress are lost on restart")
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	revokeRepo := repositories.NewSessionRevocationRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	supplierRepo := repositories.NewSupplierRepository(db)
	detailRepo := repositories.NewDetailRepository(db)
	exclusionRepo := repositories.NewExclusionRepository(db)

	sweepers["revoked_sessions"] = background.SweepFunc(revokeRepo.CleanupExpiredSessions)
	cleanupManager := background.NewCleanupManager(sweepers, logger, cfg.Auth.CleanupInterval)

	// Initialize security services
	auditLogger := pkglogger.NewAuditLogger(logger)
	sessionManager := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionLifetime, userRepo)
	loginGuard := services.NewLoginGuard(kv, services.LoginGuardConfig{
		MaxAttempts:   cfg.Guard.MaxAttempts,
		BlockDuration: cfg.Guard.BlockDuration,
		AttemptWindow: cfg.Guard.AttemptWindow,
	}, logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.FailureDelayBaseMs,
		RandomDelayMs: cfg.Auth.FailureDelayRandomMs,
	})

	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService, err = services.NewAWSSESEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.SiteURL, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		emailService = services.NewLogEmailService(logger)
	}

	// Initialize services
	validator := forms.NewValidator()
	wizardSessions := wizard.NewSessionStore(kv, cfg.Auth.SessionLifetime)
	recordService := services.NewRecordService(customerRepo, supplierRepo, detailRepo, exclusionRepo, validator, logger, auditLogger)
	authService := services.NewAuthService(userRepo, revokeRepo, loginGuard, sessionManager, wizardSessions, validator, emailService, timingDelay, logger, auditLogger)
	machine := wizard.NewMachine(validator, recordService, logger)

	cookies := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Server.Env == "production",
		SameSite: "lax",
	}

	// Initialize handlers
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, ipConfig, cookies, cfg.Auth.SessionLifetime, logger),
		Records: handlers.NewRecordHandler(recordService, wizardSessions, cookies, logger),
		Wizard:  handlers.NewWizardHandler(machine, wizardSessions, cookies, logger),
		Flash:   handlers.NewFlashHandler(cookies),
		Health:  handlers.NewHealthHandler(handlers.PingFunc(db.HealthCheck), kv, logger),
	}
	sessionMiddleware := auth.NewSessionMiddleware(sessionManager, revokeRepo, cookies, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middlewareCustom.CSRFProtection(middlewareCustom.CSRFConfig{
		Cookies:  cookies,
		Lifetime: cfg.Auth.SessionLifetime,
	}, logger))
	router.Use(sessionMiddleware.LoadSession)

	loginRateLimit := middlewareCustom.DefaultLoginRateLimit()
	if cfg.Auth.LoginRequestsPerMinute > 0 {
		loginRateLimit.RequestsPerMinute = cfg.Auth.LoginRequestsPerMinute
	}

	// Register routes
	routes.RegisterRoutes(router, h, sessionMiddleware, loginRateLimit, ipConfig)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
