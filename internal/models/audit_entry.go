package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry records one successful account or role mutation.
type AuditEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	ActorID   *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	TargetID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"target_id"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
