package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/services"
)

type AuthHandler struct {
	authService    *services.AuthService
	accountService *services.AccountService
}

func NewAuthHandler(authService *services.AuthService, accountService *services.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.authService.Logout(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

// Me returns the caller's own profile snapshot.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	view, err := h.accountService.GetUser(c.UserContext(), a.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(view)
}
