package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/services"
)

// DonorHandler serves the admin donor and donation endpoints.
type DonorHandler struct {
	donorService    *services.DonorService
	donationService *services.DonationService
}

func NewDonorHandler(donorService *services.DonorService, donationService *services.DonationService) *DonorHandler {
	return &DonorHandler{donorService: donorService, donationService: donationService}
}

func (h *DonorHandler) ListDonors(c *fiber.Ctx) error {
	donors, err := h.donorService.ListDonors(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donors)
}

func (h *DonorHandler) GetDonor(c *fiber.Ctx) error {
	id, ok := paramID(c, "donor")
	if !ok {
		return nil
	}

	donor, err := h.donorService.GetDonor(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donor)
}

func (h *DonorHandler) UpdateDonor(c *fiber.Ctx) error {
	id, ok := paramID(c, "donor")
	if !ok {
		return nil
	}

	var req dto.UpdateDonorRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	donor, err := h.donorService.UpdateDonor(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donor)
}

func (h *DonorHandler) UpdateBloodType(c *fiber.Ctx) error {
	id, ok := paramID(c, "donor")
	if !ok {
		return nil
	}

	var req dto.UpdateBloodTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	donor, err := h.donorService.UpdateDonorBloodType(c.UserContext(), id, req.BloodType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donor)
}

func (h *DonorHandler) ListDonations(c *fiber.Ctx) error {
	donations, err := h.donationService.ListDonations(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donations)
}

func (h *DonorHandler) RecordDonation(c *fiber.Ctx) error {
	var req dto.UpdateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	donation, err := h.donationService.RecordDonation(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(donation)
}

func (h *DonorHandler) UpdateDonation(c *fiber.Ctx) error {
	id, ok := paramID(c, "donation")
	if !ok {
		return nil
	}

	var req dto.UpdateDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	donation, err := h.donationService.UpdateDonation(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(donation)
}

func (h *DonorHandler) DeleteDonation(c *fiber.Ctx) error {
	id, ok := paramID(c, "donation")
	if !ok {
		return nil
	}

	if err := h.donationService.DeleteDonation(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Donation deleted successfully"})
}
