package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donor is the donor profile of a user. At most one per user.
type Donor struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName        string     `gorm:"size:100;not null" json:"first_name"`
	LastName         string     `gorm:"size:100;not null" json:"last_name"`
	BloodType        string     `gorm:"size:3" json:"blood_type"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	PhoneNumber      string     `gorm:"size:30" json:"phone_number"`
	Address          string     `gorm:"size:255" json:"address"`
	City             string     `gorm:"size:100" json:"city"`
	Points           int        `gorm:"not null;default:0" json:"points"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	CanDonate        bool       `gorm:"not null" json:"can_donate"`

	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Donations []Donation `gorm:"foreignKey:DonorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *Donor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
