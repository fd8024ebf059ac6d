package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/apperror"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type accountFixture struct {
	db   *gorm.DB
	svc  *AccountService
	root *models.User
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	db := openTestDB(t)
	return &accountFixture{
		db:   db,
		svc:  NewAccountService(db, newTestMetrics()),
		root: seedSuperAdmin(t, db, "root@example.com"),
	}
}

func (f *accountFixture) superAdmin() models.Actor { return actorOf(f.root) }

func TestPromoteToAdmin_KeepsDonorProfile(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, donor := seedDonor(t, f.db, "dana@example.com", "Dana", "Kovac")

	require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))

	got := reloadUser(t, f.db, user.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	require.NotNil(t, got.AdminProfile)
	assert.Equal(t, "Dana", got.AdminProfile.FirstName)
	assert.Equal(t, "Kovac", got.AdminProfile.LastName)
	require.NotNil(t, got.DonorProfile)
	assert.Equal(t, donor.ID, got.DonorProfile.ID)

	assert.Equal(t, int64(1), countRows(t, f.db, &models.AuditEntry{}, "action = ? AND target_id = ?", ActionPromote, user.ID))
}

func TestPromoteToAdmin_SecondCallConflicts(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, _ := seedDonor(t, f.db, "dana@example.com", "Dana", "Kovac")

	require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))
	err := f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadyAdmin)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	assert.Equal(t, int64(1), countRows(t, f.db, &models.Admin{}, "user_id = ?", user.ID))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.AuditEntry{}, "action = ?", ActionPromote))
}

func TestPromoteToAdmin_Errors(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	donor, _ := seedDonor(t, f.db, "dana@example.com", "Dana", "Kovac")
	admin, _ := seedAdmin(t, f.db, "ops@example.com", "Ops", "Lead")

	t.Run("admin actor is forbidden", func(t *testing.T) {
		err := f.svc.PromoteToAdmin(ctx, actorOf(admin), donor.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := f.svc.PromoteToAdmin(ctx, f.superAdmin(), uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("superadmin target", func(t *testing.T) {
		err := f.svc.PromoteToAdmin(ctx, f.superAdmin(), f.root.ID)
		assert.ErrorIs(t, err, ErrAlreadyAdmin)
	})

	assert.Equal(t, models.RoleDonor, reloadUser(t, f.db, donor.ID).Role)
}

func TestPromoteToAdmin_WithoutDonorProfileUsesPlaceholderNames(t *testing.T) {
	f := newAccountFixture(t)
	user := &models.User{Email: "bare@example.com", PasswordHash: "x", Role: models.RoleDonor}
	require.NoError(t, f.db.Create(user).Error)

	require.NoError(t, f.svc.PromoteToAdmin(context.Background(), f.superAdmin(), user.ID))

	got := reloadUser(t, f.db, user.ID)
	require.NotNil(t, got.AdminProfile)
	assert.Equal(t, "Admin", got.AdminProfile.FirstName)
	assert.Equal(t, "User", got.AdminProfile.LastName)
}

func TestDemoteFromAdmin_CreatesDonorProfile(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	admin, _ := seedAdmin(t, f.db, "ops@example.com", "Ops", "Lead")

	require.NoError(t, f.svc.DemoteFromAdmin(ctx, f.superAdmin(), admin.ID))

	got := reloadUser(t, f.db, admin.ID)
	assert.Equal(t, models.RoleDonor, got.Role)
	assert.Nil(t, got.AdminProfile)
	require.NotNil(t, got.DonorProfile)
	assert.Equal(t, "Ops", got.DonorProfile.FirstName)
	assert.Equal(t, "Lead", got.DonorProfile.LastName)
	assert.True(t, got.DonorProfile.CanDonate)
	assert.Zero(t, got.DonorProfile.Points)
}

func TestDemoteFromAdmin_IsIdempotent(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	admin, _ := seedAdmin(t, f.db, "ops@example.com", "Ops", "Lead")

	require.NoError(t, f.svc.DemoteFromAdmin(ctx, f.superAdmin(), admin.ID))
	first := reloadUser(t, f.db, admin.ID)

	require.NoError(t, f.svc.DemoteFromAdmin(ctx, f.superAdmin(), admin.ID))
	second := reloadUser(t, f.db, admin.ID)

	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, first.DonorProfile.ID, second.DonorProfile.ID)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Donor{}, "user_id = ?", admin.ID))
	assert.Equal(t, int64(1), countRows(t, f.db, &models.AuditEntry{}, "action = ?", ActionDemote))
}

func TestDemoteFromAdmin_RejectsSuperAdmin(t *testing.T) {
	f := newAccountFixture(t)

	err := f.svc.DemoteFromAdmin(context.Background(), f.superAdmin(), f.root.ID)
	assert.ErrorIs(t, err, ErrSuperAdminDemote)
	assert.True(t, reloadUser(t, f.db, f.root.ID).IsSuperAdmin)
}

func TestPromoteDemote_RoundTripRestoresDonor(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, donor := seedDonor(t, f.db, "dana@example.com", "Dana", "Kovac")
	require.NoError(t, f.db.Model(donor).Update("points", 120).Error)

	require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))
	require.NoError(t, f.svc.DemoteFromAdmin(ctx, f.superAdmin(), user.ID))

	got := reloadUser(t, f.db, user.ID)
	assert.Equal(t, models.RoleDonor, got.Role)
	assert.Nil(t, got.AdminProfile)
	require.NotNil(t, got.DonorProfile)
	assert.Equal(t, donor.ID, got.DonorProfile.ID)
	assert.Equal(t, 120, got.DonorProfile.Points)
	assert.Equal(t, "O+", got.DonorProfile.BloodType)
}

func TestUpdateUser(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	t.Run("superadmin role change is rejected", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), f.root.ID, &dto.UpdateUserRequest{Role: "Donor"})
		assert.ErrorIs(t, err, ErrSuperAdminRole)
		assert.Equal(t, models.RoleSuperAdmin, reloadUser(t, f.db, f.root.ID).Role)
	})

	t.Run("superadmin email change is accepted", func(t *testing.T) {
		view, err := f.svc.UpdateUser(ctx, f.superAdmin(), f.root.ID, &dto.UpdateUserRequest{Email: "Chief@Example.com"})
		require.NoError(t, err)
		assert.Equal(t, "chief@example.com", view.Email)
		assert.Equal(t, models.RoleSuperAdmin, view.Role)
		assert.True(t, view.IsSuperAdmin)
	})

	t.Run("role change to admin promotes", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "up@example.com", "Up", "Grade")
		view, err := f.svc.UpdateUser(ctx, f.superAdmin(), user.ID, &dto.UpdateUserRequest{Role: "Admin"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, view.Role)

		got := reloadUser(t, f.db, user.ID)
		assert.NotNil(t, got.AdminProfile)
		assert.NotNil(t, got.DonorProfile)
	})

	t.Run("role change to donor demotes", func(t *testing.T) {
		admin, _ := seedAdmin(t, f.db, "down@example.com", "Down", "Grade")
		view, err := f.svc.UpdateUser(ctx, f.superAdmin(), admin.ID, &dto.UpdateUserRequest{Role: "Donor"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleDonor, view.Role)
		assert.Equal(t, "Down", view.FirstName)

		got := reloadUser(t, f.db, admin.ID)
		assert.Nil(t, got.AdminProfile)
		assert.NotNil(t, got.DonorProfile)
	})

	t.Run("superadmin role cannot be assigned", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "climb@example.com", "Cli", "Mber")
		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), user.ID, &dto.UpdateUserRequest{Role: "SuperAdmin"})
		assert.ErrorIs(t, err, ErrInvalidRole)
		assert.ErrorIs(t, err, apperror.ErrInvalid)
	})

	t.Run("admin actor cannot change roles", func(t *testing.T) {
		admin, _ := seedAdmin(t, f.db, "helper@example.com", "Help", "Er")
		user, _ := seedDonor(t, f.db, "target@example.com", "Tar", "Get")
		_, err := f.svc.UpdateUser(ctx, actorOf(admin), user.ID, &dto.UpdateUserRequest{Role: "Admin"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Equal(t, models.RoleDonor, reloadUser(t, f.db, user.ID).Role)
	})

	t.Run("admin actor can change email", func(t *testing.T) {
		admin, _ := seedAdmin(t, f.db, "editor@example.com", "Edi", "Tor")
		user, _ := seedDonor(t, f.db, "old@example.com", "Old", "Mail")
		view, err := f.svc.UpdateUser(ctx, actorOf(admin), user.ID, &dto.UpdateUserRequest{Email: "new@example.com", Role: "Donor"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", view.Email)
	})

	t.Run("taken email", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "mine@example.com", "Mi", "Ne")
		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), user.ID, &dto.UpdateUserRequest{Email: "up@example.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("taken email rolls back the role change", func(t *testing.T) {
		seedDonor(t, f.db, "claimed@example.com", "Cla", "Imed")
		user, _ := seedDonor(t, f.db, "mover@example.com", "Mo", "Ver")

		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), user.ID, &dto.UpdateUserRequest{Email: "claimed@example.com", Role: "Admin"})
		assert.ErrorIs(t, err, ErrEmailTaken)

		got := reloadUser(t, f.db, user.ID)
		assert.Equal(t, models.RoleDonor, got.Role)
		assert.Equal(t, "mover@example.com", got.Email)
		assert.Nil(t, got.AdminProfile)
		assert.Zero(t, countRows(t, f.db, &models.Admin{}, "user_id = ?", user.ID))
		assert.Zero(t, countRows(t, f.db, &models.AuditEntry{}, "target_id = ?", user.ID))
	})

	t.Run("invalid email", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "valid@example.com", "Va", "Lid")
		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), user.ID, &dto.UpdateUserRequest{Email: "not-an-email"})
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.UpdateUser(ctx, f.superAdmin(), uuid.New(), &dto.UpdateUserRequest{Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("donor actor is forbidden", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "self@example.com", "Se", "Lf")
		_, err := f.svc.UpdateUser(ctx, actorOf(user), user.ID, &dto.UpdateUserRequest{Email: "self2@example.com"})
		assert.ErrorIs(t, err, ErrAdminRequired)
	})
}

func TestDeleteDonor_RemovesAccountWithoutAdminProfile(t *testing.T) {
	f := newAccountFixture(t)
	user, donor := seedDonor(t, f.db, "gone@example.com", "Go", "Ne")
	require.NoError(t, f.db.Create(&models.RefreshToken{UserID: user.ID, TokenHash: "h1"}).Error)

	require.NoError(t, f.svc.DeleteDonor(context.Background(), f.superAdmin(), donor.ID))

	assert.Zero(t, countRows(t, f.db, &models.Donor{}, "id = ?", donor.ID))
	assert.Zero(t, countRows(t, f.db, &models.User{}, "id = ?", user.ID))
	assert.Zero(t, countRows(t, f.db, &models.RefreshToken{}, "user_id = ?", user.ID))
}

func TestDeleteDonor_KeepsAccountWithAdminProfile(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, donor := seedDonor(t, f.db, "both@example.com", "Bo", "Th")
	require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))

	require.NoError(t, f.svc.DeleteDonor(ctx, f.superAdmin(), donor.ID))

	got := reloadUser(t, f.db, user.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.NotNil(t, got.AdminProfile)
	assert.Nil(t, got.DonorProfile)
}

func TestDeleteDonor_Errors(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()

	t.Run("unknown donor", func(t *testing.T) {
		err := f.svc.DeleteDonor(ctx, f.superAdmin(), uuid.New())
		assert.ErrorIs(t, err, ErrDonorNotFound)
	})

	t.Run("superadmin donor profile", func(t *testing.T) {
		donor := &models.Donor{UserID: f.root.ID, FirstName: "Root", LastName: "Admin", CanDonate: true}
		require.NoError(t, f.db.Create(donor).Error)

		err := f.svc.DeleteDonor(ctx, f.superAdmin(), donor.ID)
		assert.ErrorIs(t, err, ErrSuperAdminDelete)
		assert.Equal(t, int64(1), countRows(t, f.db, &models.Donor{}, "id = ?", donor.ID))
	})

	t.Run("donor actor", func(t *testing.T) {
		user, donor := seedDonor(t, f.db, "d@example.com", "D", "D")
		err := f.svc.DeleteDonor(ctx, actorOf(user), donor.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestDeleteDonor_RemovesDonations(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	_, donor := seedDonor(t, f.db, "giver@example.com", "Gi", "Ver")
	event := &models.BloodDonationEvent{Name: "Drive", Location: "Hall", IsActive: true}
	require.NoError(t, f.db.Create(event).Error)
	require.NoError(t, f.db.Create(&models.Donation{DonorID: donor.ID, EventID: event.ID, BloodType: "O+", Quantity: 450}).Error)

	require.NoError(t, f.svc.DeleteDonor(ctx, f.superAdmin(), donor.ID))
	assert.Zero(t, countRows(t, f.db, &models.Donation{}, "donor_id = ?", donor.ID))
}

func TestDeleteUser(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	admin, _ := seedAdmin(t, f.db, "ops@example.com", "Ops", "Lead")

	t.Run("superadmin is protected", func(t *testing.T) {
		err := f.svc.DeleteUser(ctx, f.superAdmin(), f.root.ID)
		assert.ErrorIs(t, err, ErrSuperAdminDelete)
	})

	t.Run("admin cannot delete admin", func(t *testing.T) {
		other, _ := seedAdmin(t, f.db, "peer@example.com", "Pe", "Er")
		err := f.svc.DeleteUser(ctx, actorOf(admin), other.ID)
		assert.ErrorIs(t, err, ErrSuperAdminRequired)
		assert.Equal(t, int64(1), countRows(t, f.db, &models.User{}, "id = ?", other.ID))
	})

	t.Run("admin deletes donor", func(t *testing.T) {
		user, donor := seedDonor(t, f.db, "bye@example.com", "By", "E")
		require.NoError(t, f.svc.DeleteUser(ctx, actorOf(admin), user.ID))
		assert.Zero(t, countRows(t, f.db, &models.User{}, "id = ?", user.ID))
		assert.Zero(t, countRows(t, f.db, &models.Donor{}, "id = ?", donor.ID))
	})

	t.Run("superadmin deletes admin with both profiles", func(t *testing.T) {
		user, _ := seedDonor(t, f.db, "dual@example.com", "Du", "Al")
		require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))

		require.NoError(t, f.svc.DeleteUser(ctx, f.superAdmin(), user.ID))
		assert.Zero(t, countRows(t, f.db, &models.User{}, "id = ?", user.ID))
		assert.Zero(t, countRows(t, f.db, &models.Donor{}, "user_id = ?", user.ID))
		assert.Zero(t, countRows(t, f.db, &models.Admin{}, "user_id = ?", user.ID))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := f.svc.DeleteUser(ctx, f.superAdmin(), uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestTransferSuperAdmin(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	admin, _ := seedAdmin(t, f.db, "heir@example.com", "He", "Ir")

	require.NoError(t, f.svc.TransferSuperAdmin(ctx, f.superAdmin(), admin.ID))

	oldRoot := reloadUser(t, f.db, f.root.ID)
	assert.False(t, oldRoot.IsSuperAdmin)
	assert.Equal(t, models.RoleAdmin, oldRoot.Role)
	assert.NotNil(t, oldRoot.AdminProfile)

	newRoot := reloadUser(t, f.db, admin.ID)
	assert.True(t, newRoot.IsSuperAdmin)
	assert.Equal(t, models.RoleSuperAdmin, newRoot.Role)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.User{}, "is_super_admin = ?", true))

	// The demoted holder no longer has the privilege.
	err := f.svc.TransferSuperAdmin(ctx, actorOf(oldRoot), oldRoot.ID)
	assert.ErrorIs(t, err, ErrSuperAdminRequired)

	// Repeating the transfer onto the current holder conflicts.
	err = f.svc.TransferSuperAdmin(ctx, actorOf(newRoot), admin.ID)
	assert.ErrorIs(t, err, ErrAlreadySuperAdmin)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.User{}, "is_super_admin = ?", true))
}

func TestTransferSuperAdmin_Errors(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	donor, _ := seedDonor(t, f.db, "plain@example.com", "Pl", "Ain")

	err := f.svc.TransferSuperAdmin(ctx, f.superAdmin(), donor.ID)
	assert.ErrorIs(t, err, ErrNotAdmin)

	err = f.svc.TransferSuperAdmin(ctx, f.superAdmin(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.True(t, reloadUser(t, f.db, f.root.ID).IsSuperAdmin)
}

func TestTransferSuperAdmin_WithoutCurrentHolder(t *testing.T) {
	db := openTestDB(t)
	svc := NewAccountService(db, newTestMetrics())
	admin, _ := seedAdmin(t, db, "heir@example.com", "He", "Ir")
	actor := models.Actor{UserID: uuid.New(), Role: models.RoleSuperAdmin}

	err := svc.TransferSuperAdmin(context.Background(), actor, admin.ID)
	assert.ErrorIs(t, err, ErrSuperAdminMissing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got := reloadUser(t, db, admin.ID)
	assert.False(t, got.IsSuperAdmin)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Zero(t, countRows(t, db, &models.AuditEntry{}, "target_id = ?", admin.ID))
}

func TestDemoteFromAdmin_WithoutAdminProfileUsesUnknownNames(t *testing.T) {
	f := newAccountFixture(t)
	bare := &models.User{Email: "bare@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, f.db.Create(bare).Error)

	require.NoError(t, f.svc.DemoteFromAdmin(context.Background(), f.superAdmin(), bare.ID))

	got := reloadUser(t, f.db, bare.ID)
	assert.Equal(t, models.RoleDonor, got.Role)
	require.NotNil(t, got.DonorProfile)
	assert.Equal(t, "Unknown", got.DonorProfile.FirstName)
	assert.Equal(t, "Unknown", got.DonorProfile.LastName)
	assert.True(t, got.DonorProfile.CanDonate)
	assert.Nil(t, got.DonorProfile.DateOfBirth)
}

func TestApplyRole_DuplicateProfileConflicts(t *testing.T) {
	f := newAccountFixture(t)
	admin, _ := seedAdmin(t, f.db, "racer@example.com", "Ra", "Cer")

	// A read that missed the existing admin row, as a concurrent promotion would.
	stale := reloadUser(t, f.db, admin.ID)
	stale.AdminProfile = nil

	err := applyRole(f.db, stale, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrProfileExists)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Admin{}, "user_id = ?", admin.ID))
}

func TestBootstrapSuperAdmin(t *testing.T) {
	db := openTestDB(t)
	svc := NewAccountService(db, newTestMetrics())
	ctx := context.Background()

	created, err := svc.BootstrapSuperAdmin(ctx, "Root@Example.com", "changeme123", "Root", "Admin")
	require.NoError(t, err)
	assert.True(t, created)

	var root models.User
	require.NoError(t, db.Preload("AdminProfile").First(&root, "email = ?", "root@example.com").Error)
	assert.True(t, root.IsSuperAdmin)
	assert.Equal(t, models.RoleSuperAdmin, root.Role)
	require.NotNil(t, root.AdminProfile)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.PasswordHash), []byte("changeme123")))

	created, err = svc.BootstrapSuperAdmin(ctx, "other@example.com", "changeme123", "Other", "Root")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}, "is_super_admin = ?", true))
}

func TestBootstrapSuperAdmin_ElevatesExistingAccount(t *testing.T) {
	db := openTestDB(t)
	svc := NewAccountService(db, newTestMetrics())
	user, donor := seedDonor(t, db, "owner@example.com", "Own", "Er")

	created, err := svc.BootstrapSuperAdmin(context.Background(), "owner@example.com", "changeme123", "X", "Y")
	require.NoError(t, err)
	assert.True(t, created)

	got := reloadUser(t, db, user.ID)
	assert.True(t, got.IsSuperAdmin)
	assert.Equal(t, models.RoleSuperAdmin, got.Role)
	require.NotNil(t, got.AdminProfile)
	assert.Equal(t, "Own", got.AdminProfile.FirstName)
	assert.Equal(t, donor.ID, got.DonorProfile.ID)
}

func TestBootstrapSuperAdmin_LeavesLoggingToCaller(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	svc := NewAccountService(openTestDB(t), newTestMetrics())
	created, err := svc.BootstrapSuperAdmin(context.Background(), "root@example.com", "changeme123", "Root", "Admin")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, buf.String())
}

func TestListAudit(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, _ := seedDonor(t, f.db, "a@example.com", "A", "A")

	require.NoError(t, f.svc.PromoteToAdmin(ctx, f.superAdmin(), user.ID))
	require.NoError(t, f.svc.DemoteFromAdmin(ctx, f.superAdmin(), user.ID))

	entries, total, err := f.svc.ListAudit(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.ActorID)
		assert.Equal(t, f.root.ID, *e.ActorID)
		assert.Equal(t, user.ID, e.TargetID)
	}
}

func TestListUsersAndGetUser(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	user, _ := seedDonor(t, f.db, "a@example.com", "Ana", "Ilic")

	views, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	view, err := f.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", view.FirstName)
	assert.Equal(t, "O+", view.BloodType)

	_, err = f.svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAccountMetricsRecordOutcome(t *testing.T) {
	db := openTestDB(t)
	m := newTestMetrics()
	svc := NewAccountService(db, m)
	root := seedSuperAdmin(t, db, "root@example.com")
	user, _ := seedDonor(t, db, "a@example.com", "A", "A")

	require.NoError(t, svc.PromoteToAdmin(context.Background(), actorOf(root), user.ID))
	_ = svc.PromoteToAdmin(context.Background(), actorOf(root), user.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountOperations.WithLabelValues(ActionPromote, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountOperations.WithLabelValues(ActionPromote, "conflict")))
}
