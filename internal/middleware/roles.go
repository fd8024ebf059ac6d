package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/lifeline/bloodbank-backend/internal/session"
	"gorm.io/gorm"
)

// RequireRole lets the request through when the caller's current role is at
// least min. The role is read from the database rather than the token so a
// promotion or demotion applies on the next request. The resolved caller is
// stored with session.SetActor. Must run after JWTProtected.
func RequireRole(db *gorm.DB, min models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := session.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).
			Select("id", "role", "is_super_admin").
			First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Account no longer exists",
				})
			}
			slog.Error("role lookup failed", "user_id", userID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		role := user.Role
		if user.IsSuperAdmin {
			role = models.RoleSuperAdmin
		}
		if !role.AtLeast(min) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: string(min) + " access required",
			})
		}

		session.SetActor(c, models.Actor{UserID: user.ID, Role: role})
		return c.Next()
	}
}
