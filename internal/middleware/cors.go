package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/lifeline/bloodbank-backend/internal/config"
)

// CORS allows the configured dashboard origins. X-Request-ID is exposed so
// the admin UI can quote it when reporting a failed call.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: false,
		MaxAge:           600,
	})
}
