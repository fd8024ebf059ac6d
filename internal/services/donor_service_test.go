package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonorService_ListAndGet(t *testing.T) {
	db := openTestDB(t)
	svc := NewDonorService(db)
	ctx := context.Background()
	_, a := seedDonor(t, db, "a@example.com", "Ana", "Babic")
	seedDonor(t, db, "b@example.com", "Ivo", "Anic")

	donors, err := svc.ListDonors(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, "Anic", donors[0].LastName)
	assert.Equal(t, "b@example.com", donors[0].Email)

	got, err := svc.GetDonor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "O+", got.BloodType)

	_, err = svc.GetDonor(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestDonorService_UpdateDonor(t *testing.T) {
	db := openTestDB(t)
	svc := NewDonorService(db)
	ctx := context.Background()
	_, donor := seedDonor(t, db, "a@example.com", "Ana", "Babic")

	resp, err := svc.UpdateDonor(ctx, donor.ID, &dto.UpdateDonorRequest{
		FirstName: "Anna",
		LastName:  "Babic",
		BloodType: "ab-",
		City:      "Split",
		Points:    40,
		CanDonate: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", resp.FirstName)
	assert.Equal(t, "AB-", resp.BloodType)
	assert.Equal(t, 40, resp.Points)
	assert.False(t, resp.CanDonate)
	assert.Equal(t, "a@example.com", resp.Email)

	var stored models.Donor
	require.NoError(t, db.First(&stored, "id = ?", donor.ID).Error)
	assert.False(t, stored.CanDonate)
	assert.Equal(t, "Split", stored.City)
}

func TestDonorService_UpdateDonorValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewDonorService(db)
	ctx := context.Background()
	_, donor := seedDonor(t, db, "a@example.com", "Ana", "Babic")

	_, err := svc.UpdateDonor(ctx, donor.ID, &dto.UpdateDonorRequest{FirstName: "", LastName: "B"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.UpdateDonor(ctx, donor.ID, &dto.UpdateDonorRequest{FirstName: "A", LastName: "B", BloodType: "Z"})
	assert.ErrorIs(t, err, ErrInvalidBloodType)

	_, err = svc.UpdateDonor(ctx, donor.ID, &dto.UpdateDonorRequest{FirstName: "A", LastName: "B", Points: -1})
	assert.ErrorIs(t, err, ErrInvalidPoints)

	_, err = svc.UpdateDonor(ctx, uuid.New(), &dto.UpdateDonorRequest{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestDonorService_UpdateDonorBloodType(t *testing.T) {
	db := openTestDB(t)
	svc := NewDonorService(db)
	ctx := context.Background()
	_, donor := seedDonor(t, db, "a@example.com", "Ana", "Babic")

	resp, err := svc.UpdateDonorBloodType(ctx, donor.ID, " b- ")
	require.NoError(t, err)
	assert.Equal(t, "B-", resp.BloodType)

	_, err = svc.UpdateDonorBloodType(ctx, donor.ID, "")
	assert.ErrorIs(t, err, ErrInvalidBloodType)
}

func TestDonorService_RefreshEligibility(t *testing.T) {
	db := openTestDB(t)
	svc := NewDonorService(db)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := 90 * 24 * time.Hour

	_, due := seedDonor(t, db, "due@example.com", "Due", "Donor")
	_, recent := seedDonor(t, db, "recent@example.com", "Recent", "Donor")
	_, never := seedDonor(t, db, "never@example.com", "Never", "Donated")

	old := now.Add(-100 * 24 * time.Hour)
	fresh := now.Add(-10 * 24 * time.Hour)
	require.NoError(t, db.Model(due).Updates(map[string]any{"can_donate": false, "last_donation_date": old}).Error)
	require.NoError(t, db.Model(recent).Updates(map[string]any{"can_donate": false, "last_donation_date": fresh}).Error)
	require.NoError(t, db.Model(never).Update("can_donate", false).Error)

	n, err := svc.RefreshEligibility(context.Background(), now, interval)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got models.Donor
	require.NoError(t, db.First(&got, "id = ?", due.ID).Error)
	assert.True(t, got.CanDonate)
	require.NoError(t, db.First(&got, "id = ?", recent.ID).Error)
	assert.False(t, got.CanDonate)
	require.NoError(t, db.First(&got, "id = ?", never.ID).Error)
	assert.False(t, got.CanDonate)
}
