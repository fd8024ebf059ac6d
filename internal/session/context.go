package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/models"
)

const (
	// TokenKey is the Locals key the JWT middleware stores the parsed token under.
	TokenKey = "user"
	actorKey = "actor"
)

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}

// SetActor stores the caller resolved by the role middleware.
func SetActor(c *fiber.Ctx, actor models.Actor) {
	c.Locals(actorKey, actor)
}

// GetActor returns the caller stored by SetActor.
func GetActor(c *fiber.Ctx) (models.Actor, bool) {
	actor, ok := c.Locals(actorKey).(models.Actor)
	return actor, ok
}
