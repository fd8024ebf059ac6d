package dto

import (
	"time"

	"github.com/google/uuid"
)

type DonorResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	BloodType        string     `json:"blood_type"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber      string     `json:"phone_number"`
	Address          string     `json:"address"`
	City             string     `json:"city"`
	Points           int        `json:"points"`
	CanDonate        bool       `json:"can_donate"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
}

type UpdateDonorRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	BloodType   string     `json:"blood_type"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Points      int        `json:"points"`
	CanDonate   bool       `json:"can_donate"`
}

type UpdateBloodTypeRequest struct {
	BloodType string `json:"blood_type"`
}

type UpdateDonationRequest struct {
	DonorID      uuid.UUID `json:"donor_id"`
	EventID      uuid.UUID `json:"event_id"`
	DonationDate time.Time `json:"donation_date"`
	BloodType    string    `json:"blood_type"`
	Quantity     int       `json:"quantity"`
	IsProcessed  bool      `json:"is_processed"`
}
