package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/lifeline/bloodbank-backend/internal/config"
	"github.com/lifeline/bloodbank-backend/internal/handlers"
	"github.com/lifeline/bloodbank-backend/internal/middleware"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Donor   *handlers.DonorHandler
	Catalog *handlers.CatalogHandler
	Health  *handlers.HealthHandler
}

// Setup mounts every route. A nil limiterStorage keeps rate-limit counters
// in memory. Metrics from gatherer are served on /metrics.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	h Handlers,
	limiterStorage fiber.Storage,
	gatherer prometheus.Gatherer,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           limiterStorage,
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           limiterStorage,
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	jwt := middleware.JWTProtected(cfg)
	member := []fiber.Handler{jwt, middleware.RequireRole(db, models.RoleDonor)}

	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/me", append(member, h.Auth.Me)...)
	api.Get("/events", append(member, h.Catalog.ListEvents)...)
	api.Get("/events/:id", append(member, h.Catalog.GetEvent)...)
	api.Get("/inventory", append(member, h.Catalog.ListInventory)...)

	admin := api.Group("/admin", jwt, middleware.RequireRole(db, models.RoleAdmin))

	admin.Post("/events", h.Catalog.CreateEvent)
	admin.Put("/events/:id", h.Catalog.UpdateEvent)
	admin.Delete("/events/:id", h.Catalog.DeleteEvent)
	admin.Post("/inventory", h.Catalog.CreateInventory)
	admin.Put("/inventory/:id", h.Catalog.UpdateInventory)
	admin.Delete("/inventory/:id", h.Catalog.DeleteInventory)

	admin.Get("/users", h.Account.ListUsers)
	admin.Get("/users/:id", h.Account.GetUser)
	admin.Put("/users/:id", h.Account.UpdateUser)
	admin.Delete("/users/:id", h.Account.DeleteUser)

	admin.Get("/donors", h.Donor.ListDonors)
	admin.Get("/donors/:id", h.Donor.GetDonor)
	admin.Put("/donors/:id", h.Donor.UpdateDonor)
	admin.Put("/donors/:id/bloodtype", h.Donor.UpdateBloodType)
	admin.Delete("/donors/:id", h.Account.DeleteDonor)

	admin.Get("/donations", h.Donor.ListDonations)
	admin.Post("/donations", h.Donor.RecordDonation)
	admin.Put("/donations/:id", h.Donor.UpdateDonation)
	admin.Delete("/donations/:id", h.Donor.DeleteDonation)

	// SuperAdmin only
	super := middleware.RequireRole(db, models.RoleSuperAdmin)
	admin.Post("/users/:id/promote", super, h.Account.Promote)
	admin.Post("/users/:id/demote", super, h.Account.Demote)
	admin.Post("/users/:id/transfer-superadmin", super, h.Account.TransferSuperAdmin)
	admin.Get("/audit", super, h.Account.ListAudit)
}
