package dto

import (
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/models"
)

// UserView is the flattened projection of a user and its profiles.
type UserView struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	BloodType    string      `json:"blood_type"`
	Points       int         `json:"points"`
}

// NewUserView projects u. Names, blood type and points come from the donor
// profile when present, names fall back to the admin profile.
func NewUserView(u *models.User) UserView {
	v := UserView{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
	}
	switch {
	case u.DonorProfile != nil:
		v.FirstName = u.DonorProfile.FirstName
		v.LastName = u.DonorProfile.LastName
		v.BloodType = u.DonorProfile.BloodType
		v.Points = u.DonorProfile.Points
	case u.AdminProfile != nil:
		v.FirstName = u.AdminProfile.FirstName
		v.LastName = u.AdminProfile.LastName
	}
	return v
}

type UpdateUserRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuditListResponse struct {
	Entries []models.AuditEntry `json:"entries"`
	Total   int64               `json:"total"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}
