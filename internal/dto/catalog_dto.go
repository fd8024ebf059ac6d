package dto

import (
	"time"

	"github.com/google/uuid"
)

type EventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	Organizer   string    `json:"organizer"`
	MaxDonors   int       `json:"max_donors"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

type InventoryRequest struct {
	BloodType       string `json:"blood_type"`
	Quantity        int    `json:"quantity"`
	MinimumRequired int    `json:"minimum_required"`
}

type InventoryResponse struct {
	ID              uuid.UUID `json:"id"`
	BloodType       string    `json:"blood_type"`
	Quantity        int       `json:"quantity"`
	MinimumRequired int       `json:"minimum_required"`
	LowStock        bool      `json:"low_stock"`
	LastUpdated     time.Time `json:"last_updated"`
}
