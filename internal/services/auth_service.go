package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lifeline/bloodbank-backend/internal/config"
	"github.com/lifeline/bloodbank-backend/internal/dto"
	"github.com/lifeline/bloodbank-backend/internal/metrics"
	"github.com/lifeline/bloodbank-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Auth attempt kinds.
const (
	AuthRegister = "register"
	AuthLogin    = "login"
	AuthRefresh  = "refresh"
)

type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	metrics *metrics.Metrics
}

func NewAuthService(db *gorm.DB, cfg *config.Config, m *metrics.Metrics) *AuthService {
	return &AuthService{db: db, cfg: cfg, metrics: m}
}

// Register creates the account and its profile in one transaction. Donors
// get a donor profile, Admins an admin profile.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (resp *dto.AuthResponse, err error) {
	defer func() { s.metrics.ObserveAuth(AuthRegister, err) }()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	role := models.RoleDonor
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	if !role.Assignable() {
		return nil, ErrInvalidRole
	}
	if role == models.RoleAdmin && !s.cfg.AllowAdminSignup {
		return nil, ErrAdminSignupDisabled
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, ErrNameRequired
	}

	bloodType := normalizeBloodType(req.BloodType)
	if bloodType != "" && !validBloodType(bloodType) {
		return nil, ErrInvalidBloodType
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if role == models.RoleAdmin {
			admin := &models.Admin{UserID: user.ID, FirstName: firstName, LastName: lastName}
			if err := tx.Create(admin).Error; err != nil {
				return translateProfileWrite(err, "admin")
			}
			user.AdminProfile = admin
		} else {
			donor := &models.Donor{
				UserID:      user.ID,
				FirstName:   firstName,
				LastName:    lastName,
				BloodType:   bloodType,
				DateOfBirth: req.DateOfBirth,
				PhoneNumber: strings.TrimSpace(req.PhoneNumber),
				Address:     strings.TrimSpace(req.Address),
				City:        strings.TrimSpace(req.City),
				CanDonate:   true,
			}
			if err := tx.Create(donor).Error; err != nil {
				return translateProfileWrite(err, "donor")
			}
			user.DonorProfile = donor
		}

		return recordAudit(tx, nil, ActionRegister, user.ID, map[string]any{"role": role})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "role", role)
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (resp *dto.AuthResponse, err error) {
	defer func() { s.metrics.ObserveAuth(AuthLogin, err) }()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Preload("DonorProfile").Preload("AdminProfile").
		Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token. The presented token is revoked whether or
// not it is still valid.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (resp *dto.AuthResponse, err error) {
	defer func() { s.metrics.ObserveAuth(AuthRefresh, err) }()

	if req.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}

	// Only one concurrent refresh of the same token may win the revoke.
	revoke := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if revoke.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", revoke.Error)
	}
	if revoke.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := loadUser(db, stored.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserView(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

// PurgeExpiredTokens deletes refresh tokens that expired or were revoked
// before cutoff.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked = ? AND created_at < ?)", cutoff, true, cutoff).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
