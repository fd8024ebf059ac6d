package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BloodInventory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BloodType       string    `gorm:"size:3;not null;uniqueIndex" json:"blood_type"`
	Quantity        int       `gorm:"not null;default:0" json:"quantity"`
	MinimumRequired int       `gorm:"not null;default:20" json:"minimum_required"`
	LastUpdated     time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (b *BloodInventory) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b BloodInventory) LowStock() bool {
	return b.Quantity < b.MinimumRequired
}
