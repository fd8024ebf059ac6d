package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"gorm.io/gorm"
)

const defaultMaxDonors = 50

// CatalogService manages donation events and the blood inventory.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// --- Events ---

func (s *CatalogService) ListEvents(ctx context.Context, activeOnly bool) ([]models.BloodDonationEvent, error) {
	var events []models.BloodDonationEvent
	query := s.db.WithContext(ctx).Order("event_date ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*models.BloodDonationEvent, error) {
	var event models.BloodDonationEvent
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return &event, nil
}

func (s *CatalogService) CreateEvent(ctx context.Context, req *dto.EventRequest) (*models.BloodDonationEvent, error) {
	event := models.BloodDonationEvent{IsActive: true, MaxDonors: defaultMaxDonors}
	if err := applyEventFields(&event, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *CatalogService) UpdateEvent(ctx context.Context, id uuid.UUID, req *dto.EventRequest) (*models.BloodDonationEvent, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyEventFields(event, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes the event together with the donations recorded at it.
func (s *CatalogService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Donation{}).Error; err != nil {
			return fmt.Errorf("failed to delete event donations: %w", err)
		}
		result := tx.Delete(&models.BloodDonationEvent{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete event: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}

func applyEventFields(e *models.BloodDonationEvent, req *dto.EventRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrEventNameRequired
	}
	if req.EventDate.IsZero() {
		return ErrEventDateRequired
	}
	if req.MaxDonors < 0 {
		return ErrInvalidCapacity
	}

	e.Name = name
	e.Description = strings.TrimSpace(req.Description)
	e.EventDate = req.EventDate
	e.Location = strings.TrimSpace(req.Location)
	e.City = strings.TrimSpace(req.City)
	e.Organizer = strings.TrimSpace(req.Organizer)
	if req.MaxDonors > 0 {
		e.MaxDonors = req.MaxDonors
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}
	return nil
}

// --- Inventory ---

func (s *CatalogService) ListInventory(ctx context.Context) ([]dto.InventoryResponse, error) {
	var items []models.BloodInventory
	if err := s.db.WithContext(ctx).Order("blood_type ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	out := make([]dto.InventoryResponse, len(items))
	for i := range items {
		out[i] = toInventoryResponse(&items[i])
	}
	return out, nil
}

func (s *CatalogService) CreateInventory(ctx context.Context, req *dto.InventoryRequest) (*dto.InventoryResponse, error) {
	bloodType := normalizeBloodType(req.BloodType)
	if !validBloodType(bloodType) {
		return nil, ErrInvalidBloodType
	}
	if req.Quantity < 0 || req.MinimumRequired < 0 {
		return nil, ErrInvalidStock
	}

	item := models.BloodInventory{
		BloodType:       bloodType,
		Quantity:        req.Quantity,
		MinimumRequired: req.MinimumRequired,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBloodTypeStocked
		}
		return nil, fmt.Errorf("failed to create inventory entry: %w", err)
	}

	resp := toInventoryResponse(&item)
	return &resp, nil
}

// UpdateInventory sets the stock levels of an entry. The blood type of an
// entry is fixed once created.
func (s *CatalogService) UpdateInventory(ctx context.Context, id uuid.UUID, req *dto.InventoryRequest) (*dto.InventoryResponse, error) {
	if req.Quantity < 0 || req.MinimumRequired < 0 {
		return nil, ErrInvalidStock
	}

	db := s.db.WithContext(ctx)
	var item models.BloodInventory
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to load inventory entry: %w", err)
	}

	if err := db.Model(&item).Updates(map[string]any{
		"quantity":         req.Quantity,
		"minimum_required": req.MinimumRequired,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update inventory entry: %w", err)
	}
	item.Quantity = req.Quantity
	item.MinimumRequired = req.MinimumRequired

	resp := toInventoryResponse(&item)
	return &resp, nil
}

func (s *CatalogService) DeleteInventory(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.BloodInventory{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete inventory entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInventoryNotFound
	}
	return nil
}

func toInventoryResponse(b *models.BloodInventory) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:              b.ID,
		BloodType:       b.BloodType,
		Quantity:        b.Quantity,
		MinimumRequired: b.MinimumRequired,
		LowStock:        b.LowStock(),
		LastUpdated:     b.LastUpdated,
	}
}
