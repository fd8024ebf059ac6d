package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the account root. Role is a cache of the profile rows plus the
// SuperAdmin flag and is only written by the account service.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"size:20;not null;default:'Donor'" json:"role"`
	IsSuperAdmin bool       `gorm:"not null;default:false;uniqueIndex:idx_users_single_superadmin,where:is_super_admin = true" json:"is_super_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	DonorProfile *Donor `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"donor_profile,omitempty"`
	AdminProfile *Admin `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"admin_profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
