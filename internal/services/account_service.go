package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/metrics"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions.
const (
	ActionPromote     = "promote"
	ActionDemote      = "demote"
	ActionUpdateUser  = "update_user"
	ActionDeleteDonor = "delete_donor"
	ActionDeleteUser  = "delete_user"
	ActionTransfer    = "transfer_superadmin"
	ActionBootstrap   = "bootstrap_superadmin"
	ActionRegister    = "register"
)

const (
	fallbackAdminFirst = "Admin"
	fallbackAdminLast  = "User"
	fallbackDonorName  = "Unknown"
)

// AccountService owns the users, donors and admins tables. It is the only
// writer of User.Role and User.IsSuperAdmin; every operation runs in a single
// transaction and validates before it mutates.
type AccountService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewAccountService(db *gorm.DB, m *metrics.Metrics) *AccountService {
	return &AccountService{db: db, metrics: m}
}

func (s *AccountService) ListUsers(ctx context.Context) ([]dto.UserView, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Preload("DonorProfile").
		Preload("AdminProfile").
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]dto.UserView, len(users))
	for i := range users {
		views[i] = dto.NewUserView(&users[i])
	}
	return views, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserView, error) {
	user, err := loadUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserView(user)
	return &view, nil
}

// PromoteToAdmin grants admin capability. An existing donor profile is kept.
func (s *AccountService) PromoteToAdmin(ctx context.Context, actor models.Actor, userID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionPromote, start, err) }()

	if !actor.IsSuperAdmin() {
		return ErrSuperAdminRequired
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin || user.IsSuperAdmin {
			return ErrAlreadyAdmin
		}

		from := user.Role
		if err := applyRole(tx, user, models.RoleAdmin); err != nil {
			return err
		}
		return recordAudit(tx, &actor, ActionPromote, user.ID, map[string]any{
			"from": from,
			"to":   user.Role,
		})
	})
}

// DemoteFromAdmin removes admin capability and makes sure the user keeps a
// donor profile. Demoting a non-Admin is a successful no-op.
func (s *AccountService) DemoteFromAdmin(ctx context.Context, actor models.Actor, userID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionDemote, start, err) }()

	if !actor.IsSuperAdmin() {
		return ErrSuperAdminRequired
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.IsSuperAdmin {
			return ErrSuperAdminDemote
		}
		if user.Role != models.RoleAdmin {
			return nil
		}

		if err := applyRole(tx, user, models.RoleDonor); err != nil {
			return err
		}
		return recordAudit(tx, &actor, ActionDemote, user.ID, map[string]any{
			"from": models.RoleAdmin,
			"to":   user.Role,
		})
	})
}

// UpdateUser changes a user's email and, when req.Role differs from the
// current role, moves the user to that role with the same profile rules as
// PromoteToAdmin and DemoteFromAdmin. Empty fields are left unchanged.
func (s *AccountService) UpdateUser(ctx context.Context, actor models.Actor, userID uuid.UUID, req *dto.UpdateUserRequest) (view *dto.UserView, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionUpdateUser, start, err) }()

	if !actor.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrAdminRequired
	}

	var email string
	if strings.TrimSpace(req.Email) != "" {
		if email, err = normalizeEmail(req.Email); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}

		target := user.Role
		if req.Role != "" {
			target = models.Role(req.Role)
		}
		roleChange := target != user.Role

		if roleChange {
			if user.IsSuperAdmin {
				return ErrSuperAdminRole
			}
			if !target.Assignable() {
				return ErrInvalidRole
			}
			if !actor.IsSuperAdmin() {
				return ErrSuperAdminRequired
			}
		}

		details := map[string]any{}
		if roleChange {
			details["role_from"] = user.Role
			details["role_to"] = target
			if err := applyRole(tx, user, target); err != nil {
				return err
			}
		}

		if email != "" && email != user.Email {
			var taken int64
			if err := tx.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&taken).Error; err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if taken > 0 {
				return ErrEmailTaken
			}
			if err := tx.Model(user).Update("email", email).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrEmailTaken
				}
				return fmt.Errorf("failed to update email: %w", err)
			}
			details["email_from"] = user.Email
			details["email_to"] = email
			user.Email = email
		}

		if len(details) > 0 {
			if err := recordAudit(tx, &actor, ActionUpdateUser, user.ID, details); err != nil {
				return err
			}
		}
		result := dto.NewUserView(user)
		view = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteDonor removes a donor profile. The owning account is removed with it
// unless it also holds an admin profile.
func (s *AccountService) DeleteDonor(ctx context.Context, actor models.Actor, donorID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionDeleteDonor, start, err) }()

	if !actor.Role.AtLeast(models.RoleAdmin) {
		return ErrAdminRequired
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var donor models.Donor
		if err := tx.First(&donor, "id = ?", donorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDonorNotFound
			}
			return fmt.Errorf("failed to load donor: %w", err)
		}

		var user models.User
		err := tx.Preload("AdminProfile").First(&user, "id = ?", donor.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := deleteDonorRows(tx, &donor); err != nil {
				return err
			}
			return recordAudit(tx, &actor, ActionDeleteDonor, donor.UserID, map[string]any{
				"donor_id": donor.ID,
				"orphan":   true,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to load donor owner: %w", err)
		}

		if user.IsSuperAdmin {
			return ErrSuperAdminDelete
		}

		if err := deleteDonorRows(tx, &donor); err != nil {
			return err
		}

		removeAccount := user.AdminProfile == nil
		if removeAccount {
			if err := deleteUserRows(tx, &user); err != nil {
				return err
			}
		}
		return recordAudit(tx, &actor, ActionDeleteDonor, user.ID, map[string]any{
			"donor_id":        donor.ID,
			"account_removed": removeAccount,
		})
	})
}

// DeleteUser removes the account and all of its profiles. Only the
// SuperAdmin may delete an Admin.
func (s *AccountService) DeleteUser(ctx context.Context, actor models.Actor, userID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionDeleteUser, start, err) }()

	if !actor.Role.AtLeast(models.RoleAdmin) {
		return ErrAdminRequired
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.IsSuperAdmin {
			return ErrSuperAdminDelete
		}
		if (user.Role == models.RoleAdmin || user.AdminProfile != nil) && !actor.IsSuperAdmin() {
			return ErrSuperAdminRequired
		}

		if user.DonorProfile != nil {
			if err := deleteDonorRows(tx, user.DonorProfile); err != nil {
				return err
			}
		}
		if user.AdminProfile != nil {
			if err := tx.Delete(user.AdminProfile).Error; err != nil {
				return fmt.Errorf("failed to delete admin profile: %w", err)
			}
		}
		if err := deleteUserRows(tx, user); err != nil {
			return err
		}
		return recordAudit(tx, &actor, ActionDeleteUser, user.ID, map[string]any{
			"email": user.Email,
			"role":  user.Role,
		})
	})
}

// TransferSuperAdmin hands the SuperAdmin flag from its current holder to an
// existing Admin. The old holder stays an Admin.
func (s *AccountService) TransferSuperAdmin(ctx context.Context, actor models.Actor, targetID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAccount(ActionTransfer, start, err) }()

	if !actor.IsSuperAdmin() {
		return ErrSuperAdminRequired
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.User
		if err := tx.First(&current, "is_super_admin = ?", true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSuperAdminMissing
			}
			return fmt.Errorf("failed to load current SuperAdmin: %w", err)
		}

		var target models.User
		if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load transfer target: %w", err)
		}
		if target.IsSuperAdmin {
			return ErrAlreadySuperAdmin
		}
		if target.Role != models.RoleAdmin {
			return ErrNotAdmin
		}

		// The old holder is cleared first so the single-SuperAdmin index
		// never sees two flagged rows.
		if err := tx.Model(&current).Updates(map[string]any{
			"is_super_admin": false,
			"role":           models.RoleAdmin,
		}).Error; err != nil {
			return fmt.Errorf("failed to clear current SuperAdmin: %w", err)
		}
		if err := tx.Model(&target).Updates(map[string]any{
			"is_super_admin": true,
			"role":           models.RoleSuperAdmin,
		}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySuperAdmin
			}
			return fmt.Errorf("failed to set new SuperAdmin: %w", err)
		}

		return recordAudit(tx, &actor, ActionTransfer, target.ID, map[string]any{
			"previous": current.ID,
		})
	})
}

// BootstrapSuperAdmin creates the initial SuperAdmin when none exists. If an
// account with the email already exists it is elevated instead. Returns
// false when a SuperAdmin was already present.
func (s *AccountService) BootstrapSuperAdmin(ctx context.Context, email, password, firstName, lastName string) (created bool, err error) {
	email, err = normalizeEmail(email)
	if err != nil {
		return false, err
	}
	if len(password) < MinPasswordLength {
		return false, ErrPasswordTooShort
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("is_super_admin = ?", true).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count SuperAdmins: %w", err)
		}
		if existing > 0 {
			return nil
		}

		var user models.User
		err := tx.Preload("DonorProfile").Preload("AdminProfile").First(&user, "email = ?", email).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user = models.User{
				Email:        email,
				PasswordHash: string(hash),
				Role:         models.RoleSuperAdmin,
				IsSuperAdmin: true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create SuperAdmin: %w", err)
			}
			admin := models.Admin{UserID: user.ID, FirstName: firstName, LastName: lastName}
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to create SuperAdmin profile: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up bootstrap account: %w", err)
		default:
			if user.AdminProfile == nil {
				if err := applyRole(tx, &user, models.RoleAdmin); err != nil {
					return err
				}
			}
			if err := tx.Model(&user).Updates(map[string]any{
				"is_super_admin": true,
				"role":           models.RoleSuperAdmin,
			}).Error; err != nil {
				return fmt.Errorf("failed to elevate bootstrap account: %w", err)
			}
		}

		created = true
		return recordAudit(tx, nil, ActionBootstrap, user.ID, map[string]any{"email": email})
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *AccountService) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
	var entries []models.AuditEntry
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditEntry{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, total, nil
}

// applyRole is the single place where User.Role is changed together with the
// profile rows it mirrors. Admin gains an admin profile seeded from the donor
// names. Donor loses the admin profile and gains a donor profile seeded from
// the admin names if it has none. A donor profile is never removed here.
func applyRole(tx *gorm.DB, user *models.User, target models.Role) error {
	switch target {
	case models.RoleAdmin:
		if user.AdminProfile == nil {
			first, last := fallbackAdminFirst, fallbackAdminLast
			if user.DonorProfile != nil {
				first, last = user.DonorProfile.FirstName, user.DonorProfile.LastName
			}
			admin := &models.Admin{UserID: user.ID, FirstName: first, LastName: last}
			if err := tx.Create(admin).Error; err != nil {
				return translateProfileWrite(err, "admin")
			}
			user.AdminProfile = admin
		}
	case models.RoleDonor:
		first, last := fallbackDonorName, fallbackDonorName
		if user.AdminProfile != nil {
			first, last = user.AdminProfile.FirstName, user.AdminProfile.LastName
			if err := tx.Delete(user.AdminProfile).Error; err != nil {
				return fmt.Errorf("failed to delete admin profile: %w", err)
			}
			user.AdminProfile = nil
		}
		if user.DonorProfile == nil {
			donor := &models.Donor{
				UserID:    user.ID,
				FirstName: first,
				LastName:  last,
				CanDonate: true,
			}
			if err := tx.Create(donor).Error; err != nil {
				return translateProfileWrite(err, "donor")
			}
			user.DonorProfile = donor
		}
	default:
		return ErrInvalidRole
	}

	if err := tx.Model(user).Update("role", target).Error; err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = target
	return nil
}

func loadUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.Preload("DonorProfile").Preload("AdminProfile").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func deleteDonorRows(tx *gorm.DB, donor *models.Donor) error {
	if err := tx.Where("donor_id = ?", donor.ID).Delete(&models.Donation{}).Error; err != nil {
		return fmt.Errorf("failed to delete donations: %w", err)
	}
	if err := tx.Delete(donor).Error; err != nil {
		return fmt.Errorf("failed to delete donor: %w", err)
	}
	return nil
}

func deleteUserRows(tx *gorm.DB, user *models.User) error {
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := tx.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// translateProfileWrite turns a unique-index violation on the profile's
// user_id into a conflict. That is how a concurrent duplicate promotion loses.
func translateProfileWrite(err error, profile string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrProfileExists
	}
	return fmt.Errorf("failed to create %s profile: %w", profile, err)
}

func recordAudit(tx *gorm.DB, actor *models.Actor, action string, targetID uuid.UUID, details map[string]any) error {
	entry := models.AuditEntry{Action: action, TargetID: targetID}
	if actor != nil && actor.UserID != uuid.Nil {
		id := actor.UserID
		entry.ActorID = &id
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		entry.Details = datatypes.JSON(raw)
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}
