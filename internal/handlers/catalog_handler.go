package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListEvents returns active events. Pass ?all=true to include inactive ones.
func (h *CatalogHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.catalogService.ListEvents(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(events)
}

func (h *CatalogHandler) GetEvent(c *fiber.Ctx) error {
	id, ok := paramID(c, "event")
	if !ok {
		return nil
	}

	event, err := h.catalogService.GetEvent(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(event)
}

func (h *CatalogHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	event, err := h.catalogService.CreateEvent(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *CatalogHandler) UpdateEvent(c *fiber.Ctx) error {
	id, ok := paramID(c, "event")
	if !ok {
		return nil
	}

	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	event, err := h.catalogService.UpdateEvent(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(event)
}

func (h *CatalogHandler) DeleteEvent(c *fiber.Ctx) error {
	id, ok := paramID(c, "event")
	if !ok {
		return nil
	}

	if err := h.catalogService.DeleteEvent(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Event deleted successfully"})
}

func (h *CatalogHandler) ListInventory(c *fiber.Ctx) error {
	items, err := h.catalogService.ListInventory(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *CatalogHandler) CreateInventory(c *fiber.Ctx) error {
	var req dto.InventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	item, err := h.catalogService.CreateInventory(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CatalogHandler) UpdateInventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "inventory")
	if !ok {
		return nil
	}

	var req dto.InventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	item, err := h.catalogService.UpdateInventory(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *CatalogHandler) DeleteInventory(c *fiber.Ctx) error {
	id, ok := paramID(c, "inventory")
	if !ok {
		return nil
	}

	if err := h.catalogService.DeleteInventory(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Inventory entry deleted successfully"})
}
