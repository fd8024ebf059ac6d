package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"gorm.io/gorm"
)

// DonationPoints is awarded to a donor for every recorded donation.
const DonationPoints = 10

type DonationService struct {
	db *gorm.DB
}

func NewDonationService(db *gorm.DB) *DonationService {
	return &DonationService{db: db}
}

func (s *DonationService) ListDonations(ctx context.Context) ([]models.Donation, error) {
	var donations []models.Donation
	err := s.db.WithContext(ctx).
		Preload("Donor").
		Preload("Event").
		Order("donation_date DESC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// RecordDonation stores a donation and updates the donor: points are
// awarded, the last donation date advances and the donor becomes ineligible
// until the eligibility job clears it.
func (s *DonationService) RecordDonation(ctx context.Context, req *dto.UpdateDonationRequest) (*models.Donation, error) {
	donation := models.Donation{}
	if err := applyDonationFields(&donation, req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		donor, err := checkDonationRefs(tx, donation.DonorID, donation.EventID)
		if err != nil {
			return err
		}
		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}

		updates := map[string]any{
			"points":     gorm.Expr("points + ?", DonationPoints),
			"can_donate": false,
		}
		if donor.LastDonationDate == nil || donation.DonationDate.After(*donor.LastDonationDate) {
			updates["last_donation_date"] = donation.DonationDate
		}
		if err := tx.Model(donor).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update donor after donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (s *DonationService) UpdateDonation(ctx context.Context, id uuid.UUID, req *dto.UpdateDonationRequest) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&donation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonationNotFound
			}
			return fmt.Errorf("failed to load donation: %w", err)
		}
		if err := applyDonationFields(&donation, req); err != nil {
			return err
		}
		if _, err := checkDonationRefs(tx, donation.DonorID, donation.EventID); err != nil {
			return err
		}
		if err := tx.Save(&donation).Error; err != nil {
			return fmt.Errorf("failed to update donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (s *DonationService) DeleteDonation(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Donation{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete donation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDonationNotFound
	}
	return nil
}

func applyDonationFields(d *models.Donation, req *dto.UpdateDonationRequest) error {
	bloodType := normalizeBloodType(req.BloodType)
	if !validBloodType(bloodType) {
		return ErrInvalidBloodType
	}
	if req.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	date := req.DonationDate
	if date.IsZero() {
		date = time.Now().UTC()
	}

	d.DonorID = req.DonorID
	d.EventID = req.EventID
	d.DonationDate = date
	d.BloodType = bloodType
	d.Quantity = req.Quantity
	d.IsProcessed = req.IsProcessed
	return nil
}

func checkDonationRefs(tx *gorm.DB, donorID, eventID uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	if err := tx.First(&donor, "id = ?", donorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to load donor: %w", err)
	}
	var events int64
	if err := tx.Model(&models.BloodDonationEvent{}).Where("id = ?", eventID).Count(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if events == 0 {
		return nil, ErrEventNotFound
	}
	return &donor, nil
}
