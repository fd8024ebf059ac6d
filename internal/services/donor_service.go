package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"gorm.io/gorm"
)

type DonorService struct {
	db *gorm.DB
}

func NewDonorService(db *gorm.DB) *DonorService {
	return &DonorService{db: db}
}

func (s *DonorService) ListDonors(ctx context.Context) ([]dto.DonorResponse, error) {
	var donors []models.Donor
	if err := s.db.WithContext(ctx).Preload("User").Order("last_name ASC, first_name ASC").Find(&donors).Error; err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}

	out := make([]dto.DonorResponse, len(donors))
	for i := range donors {
		out[i] = toDonorResponse(&donors[i])
	}
	return out, nil
}

func (s *DonorService) GetDonor(ctx context.Context, id uuid.UUID) (*dto.DonorResponse, error) {
	donor, err := s.findDonor(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	resp := toDonorResponse(donor)
	return &resp, nil
}

func (s *DonorService) UpdateDonor(ctx context.Context, id uuid.UUID, req *dto.UpdateDonorRequest) (*dto.DonorResponse, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}
	bloodType := normalizeBloodType(req.BloodType)
	if bloodType != "" && !validBloodType(bloodType) {
		return nil, ErrInvalidBloodType
	}
	if req.Points < 0 {
		return nil, ErrInvalidPoints
	}

	var donor *models.Donor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if donor, err = s.findDonor(tx, id); err != nil {
			return err
		}

		// Map form so false and empty values are written.
		updates := map[string]any{
			"first_name":    firstName,
			"last_name":     lastName,
			"blood_type":    bloodType,
			"date_of_birth": req.DateOfBirth,
			"phone_number":  strings.TrimSpace(req.PhoneNumber),
			"address":       strings.TrimSpace(req.Address),
			"city":          strings.TrimSpace(req.City),
			"points":        req.Points,
			"can_donate":    req.CanDonate,
		}
		if err := tx.Model(donor).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update donor: %w", err)
		}
		donor, err = s.findDonor(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := toDonorResponse(donor)
	return &resp, nil
}

func (s *DonorService) UpdateDonorBloodType(ctx context.Context, id uuid.UUID, bloodType string) (*dto.DonorResponse, error) {
	bloodType = normalizeBloodType(bloodType)
	if !validBloodType(bloodType) {
		return nil, ErrInvalidBloodType
	}

	db := s.db.WithContext(ctx)
	donor, err := s.findDonor(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(donor).Update("blood_type", bloodType).Error; err != nil {
		return nil, fmt.Errorf("failed to update blood type: %w", err)
	}
	donor.BloodType = bloodType

	resp := toDonorResponse(donor)
	return &resp, nil
}

// RefreshEligibility marks donors eligible again once interval has passed
// since their last donation. Returns the number of donors updated.
func (s *DonorService) RefreshEligibility(ctx context.Context, now time.Time, interval time.Duration) (int64, error) {
	cutoff := now.Add(-interval)
	result := s.db.WithContext(ctx).Model(&models.Donor{}).
		Where("can_donate = ? AND last_donation_date IS NOT NULL AND last_donation_date <= ?", false, cutoff).
		Update("can_donate", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to refresh donor eligibility: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *DonorService) findDonor(db *gorm.DB, id uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	if err := db.Preload("User").First(&donor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to load donor: %w", err)
	}
	return &donor, nil
}

func toDonorResponse(d *models.Donor) dto.DonorResponse {
	resp := dto.DonorResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		BloodType:        d.BloodType,
		DateOfBirth:      d.DateOfBirth,
		PhoneNumber:      d.PhoneNumber,
		Address:          d.Address,
		City:             d.City,
		Points:           d.Points,
		CanDonate:        d.CanDonate,
		LastDonationDate: d.LastDonationDate,
	}
	if d.User != nil {
		resp.Email = d.User.Email
	}
	return resp
}
