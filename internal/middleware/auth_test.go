package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/config"
	"github.com/lifeline/bloodbank-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subjectID = uuid.MustParse("5f0b3a8e-3c1d-4a7e-9b7a-2f1e6d4c8a10")

func TestJWTProtected(t *testing.T) {
	app := fiber.New()
	app.Get("/", JWTProtected(testCfg), func(c *fiber.Ctx) error {
		id, err := session.GetUserID(c)
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.String())
	})

	sign := func(method jwt.SigningMethod) string {
		token := jwt.NewWithClaims(method, jwt.MapClaims{
			"sub": subjectID.String(),
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		signed, err := token.SignedString([]byte(testCfg.JWTSecret))
		require.NoError(t, err)
		return signed
	}

	t.Run("valid token exposes the subject", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+sign(jwt.SigningMethodHS256))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, subjectID.String(), string(body))
	})

	t.Run("other algorithm with the same key is rejected", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, get(t, app, sign(jwt.SigningMethodHS512)))
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, fiber.StatusUnauthorized, get(t, app, ""))
	})
}

func TestCORSExposesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(&config.Config{CORSOrigins: "http://localhost:3000"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, fiber.HeaderXRequestID, resp.Header.Get("Access-Control-Expose-Headers"))
}
