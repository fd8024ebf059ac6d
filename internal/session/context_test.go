package session

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		token   any
		want    uuid.UUID
		wantErr bool
	}{
		{name: "valid", token: &jwt.Token{Claims: jwt.MapClaims{"sub": id.String()}}, want: id},
		{name: "no token", token: nil, wantErr: true},
		{name: "missing sub", token: &jwt.Token{Claims: jwt.MapClaims{}}, wantErr: true},
		{name: "bad sub", token: &jwt.Token{Claims: jwt.MapClaims{"sub": "nope"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got uuid.UUID
			var gotErr error
			app.Get("/", func(c *fiber.Ctx) error {
				if tt.token != nil {
					c.Locals("user", tt.token)
				}
				got, gotErr = GetUserID(c)
				return nil
			})

			_, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			assert.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActorRoundTrip(t *testing.T) {
	app := fiber.New()
	actor := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	var got models.Actor
	var before, after bool
	app.Get("/", func(c *fiber.Ctx) error {
		_, before = GetActor(c)
		SetActor(c, actor)
		got, after = GetActor(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.False(t, before)
	assert.True(t, after)
	assert.Equal(t, actor, got)
}
