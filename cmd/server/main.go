package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lifeline/bloodbank-backend/internal/config"
	"github.com/lifeline/bloodbank-backend/internal/database"
	"github.com/lifeline/bloodbank-backend/internal/handlers"
	"github.com/lifeline/bloodbank-backend/internal/logging"
	"github.com/lifeline/bloodbank-backend/internal/metrics"
	"github.com/lifeline/bloodbank-backend/internal/middleware"
	"github.com/lifeline/bloodbank-backend/internal/ratelimit"
	"github.com/lifeline/bloodbank-backend/internal/routes"
	"github.com/lifeline/bloodbank-backend/internal/scheduler"
	"github.com/lifeline/bloodbank-backend/internal/services"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	logging.Setup(cfg.LogLevel, dbLogHandler)

	// Services
	m := metrics.New(prometheus.DefaultRegisterer)
	accountService := services.NewAccountService(database.DB, m)
	authService := services.NewAuthService(database.DB, cfg, m)
	donorService := services.NewDonorService(database.DB)
	donationService := services.NewDonationService(database.DB)
	catalogService := services.NewCatalogService(database.DB)

	if cfg.BootstrapEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := accountService.BootstrapSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword, "Super", "Admin")
		cancel()
		if err != nil {
			slog.Error("superadmin bootstrap failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("superadmin bootstrapped", "email", cfg.SuperAdminEmail)
		}
	}

	// Maintenance jobs
	jobs := scheduler.New(slog.Default())
	for _, job := range []scheduler.Job{
		scheduler.LogRetentionJob(database.DB, time.Duration(cfg.LogRetentionDays)*24*time.Hour),
		scheduler.EligibilityJob(donorService, cfg.DonationInterval),
		scheduler.TokenCleanupJob(authService),
	} {
		if err := jobs.Register(job); err != nil {
			slog.Error("job registration failed", "job", job.Name, "error", err)
			os.Exit(1)
		}
	}
	jobs.Start()

	// Shared limiter storage; in-memory when Redis is not configured
	var limiterStorage fiber.Storage
	var redisStorage *ratelimit.RedisStorage
	if cfg.RedisURL != "" {
		redisStorage, err = ratelimit.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		limiterStorage = redisStorage
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, accountService),
		Account: handlers.NewAccountHandler(accountService),
		Donor:   handlers.NewDonorHandler(donorService, donationService),
		Catalog: handlers.NewCatalogHandler(catalogService),
		Health:  handlers.NewHealthHandler(database.DB),
	}, limiterStorage, prometheus.DefaultGatherer)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	jobs.Stop()

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisStorage != nil {
		if err := redisStorage.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
