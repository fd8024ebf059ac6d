package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/database"
	"github.com/lifeline/bloodbank-backend/internal/metrics"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func seedDonor(t *testing.T, db *gorm.DB, email, first, last string) (*models.User, *models.Donor) {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: models.RoleDonor}
	require.NoError(t, db.Create(user).Error)
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	donor := &models.Donor{
		UserID:      user.ID,
		FirstName:   first,
		LastName:    last,
		BloodType:   "O+",
		DateOfBirth: &dob,
		CanDonate:   true,
	}
	require.NoError(t, db.Create(donor).Error)
	return user, donor
}

func seedAdmin(t *testing.T, db *gorm.DB, email, first, last string) (*models.User, *models.Admin) {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(user).Error)
	admin := &models.Admin{UserID: user.ID, FirstName: first, LastName: last}
	require.NoError(t, db.Create(admin).Error)
	return user, admin
}

func seedSuperAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Role: models.RoleSuperAdmin, IsSuperAdmin: true}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Admin{UserID: user.ID, FirstName: "Root", LastName: "Admin"}).Error)
	return user
}

func actorOf(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID, Role: u.Role}
}

func reloadUser(t *testing.T, db *gorm.DB, id uuid.UUID) *models.User {
	t.Helper()
	user, err := loadUser(db, id)
	require.NoError(t, err)
	return user
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
