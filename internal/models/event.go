package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodDonationEvent struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"size:200;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	EventDate        time.Time `gorm:"not null;index" json:"event_date"`
	Location         string    `gorm:"size:255" json:"location"`
	City             string    `gorm:"size:100;index" json:"city"`
	Organizer        string    `gorm:"size:200" json:"organizer"`
	RegisteredDonors int       `gorm:"not null;default:0" json:"registered_donors"`
	MaxDonors        int       `gorm:"not null;default:50" json:"max_donors"`
	IsActive         bool      `gorm:"not null" json:"is_active"`

	Donations []Donation `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

func (e *BloodDonationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
