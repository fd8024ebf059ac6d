package services

import "github.com/lifeline/bloodbank-backend/internal/apperror"

var (
	ErrUserNotFound      = apperror.NotFound("user not found")
	ErrDonorNotFound     = apperror.NotFound("donor not found")
	ErrDonationNotFound  = apperror.NotFound("donation not found")
	ErrEventNotFound     = apperror.NotFound("event not found")
	ErrInventoryNotFound = apperror.NotFound("inventory entry not found")
	ErrSuperAdminMissing = apperror.NotFound("current SuperAdmin not found")
)

var (
	ErrAlreadyAdmin      = apperror.Conflict("user is already Admin or SuperAdmin")
	ErrAlreadySuperAdmin = apperror.Conflict("user is already SuperAdmin")
	ErrNotAdmin          = apperror.Conflict("only an Admin can become SuperAdmin")
	ErrSuperAdminDemote  = apperror.Conflict("cannot demote the SuperAdmin")
	ErrSuperAdminRole    = apperror.Conflict("cannot change SuperAdmin role")
	ErrSuperAdminDelete  = apperror.Conflict("cannot delete the SuperAdmin")
	ErrProfileExists     = apperror.Conflict("profile already exists for this user")
	ErrEmailTaken        = apperror.Conflict("email already registered")
	ErrBloodTypeStocked  = apperror.Conflict("inventory entry already exists for this blood type")
)

var (
	ErrSuperAdminRequired  = apperror.Forbidden("only the SuperAdmin can manage Admin accounts")
	ErrAdminRequired       = apperror.Forbidden("admin access required")
	ErrAdminSignupDisabled = apperror.Forbidden("admin self-registration is disabled")
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired refresh token")
)

var (
	ErrInvalidRole       = apperror.Invalid("role", "role must be Admin or Donor")
	ErrInvalidEmail      = apperror.Invalid("email", "email address is invalid")
	ErrPasswordTooShort  = apperror.Invalid("password", "password must be at least 8 characters")
	ErrPasswordMismatch  = apperror.Invalid("confirm_password", "passwords do not match")
	ErrNameRequired      = apperror.Invalid("first_name", "first and last name are required")
	ErrInvalidBloodType  = apperror.Invalid("blood_type", "blood type must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	ErrInvalidQuantity   = apperror.Invalid("quantity", "quantity must be positive")
	ErrInvalidPoints     = apperror.Invalid("points", "points cannot be negative")
	ErrEventNameRequired = apperror.Invalid("name", "event name is required")
	ErrEventDateRequired = apperror.Invalid("event_date", "event date is required")
	ErrInvalidCapacity   = apperror.Invalid("max_donors", "max donors cannot be negative")
	ErrInvalidStock      = apperror.Invalid("quantity", "stock levels cannot be negative")
)
