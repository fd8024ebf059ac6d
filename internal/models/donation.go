package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Donation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"donor_id"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	DonationDate time.Time `gorm:"not null" json:"donation_date"`
	BloodType    string    `gorm:"size:3;not null" json:"blood_type"`
	Quantity     int       `gorm:"not null;default:450" json:"quantity"`
	IsProcessed  bool      `gorm:"not null;default:false" json:"is_processed"`

	Donor *Donor              `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
	Event *BloodDonationEvent `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
