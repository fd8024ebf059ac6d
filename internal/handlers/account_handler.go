package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/services"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AccountHandler exposes the account and role operations to administrators.
type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.accountService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *AccountHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	user, err := h.accountService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *AccountHandler) UpdateUser(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.accountService.UpdateUser(c.UserContext(), a, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *AccountHandler) DeleteUser(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	if err := h.accountService.DeleteUser(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

func (h *AccountHandler) DeleteDonor(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "donor")
	if !ok {
		return nil
	}

	if err := h.accountService.DeleteDonor(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Donor deleted successfully"})
}

func (h *AccountHandler) Promote(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	if err := h.accountService.PromoteToAdmin(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User promoted to Admin"})
}

func (h *AccountHandler) Demote(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	if err := h.accountService.DemoteFromAdmin(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User demoted to Donor"})
}

func (h *AccountHandler) TransferSuperAdmin(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := paramID(c, "user")
	if !ok {
		return nil
	}

	if err := h.accountService.TransferSuperAdmin(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "SuperAdmin transferred"})
}

func (h *AccountHandler) ListAudit(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultAuditLimit)))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.accountService.ListAudit(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.AuditListResponse{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}
