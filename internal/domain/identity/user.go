package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashes
var bcryptCost = bcrypt.DefaultCost

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a marketplace account. Agency access is granted through agency.Member.
type User struct {
	shared.BaseEntity
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string `gorm:"type:varchar(255);not null"`
	FullName       string `gorm:"type:varchar(200);not null"`
	Phone          string `gorm:"type:varchar(50)"`
	TelegramChatID string `gorm:"type:varchar(64)"`
	Active         bool   `gorm:"not null;default:true"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(email, password, fullName string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewValidationError("Full name cannot be empty")
	}
	if len(fullName) > 200 {
		return nil, shared.NewValidationError("Full name cannot exceed 200 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Active:       true,
	}, nil
}

// UpdateProfile changes the mutable contact fields
func (u *User) UpdateProfile(fullName, phone, telegramChatID *string) error {
	if fullName != nil {
		name := strings.TrimSpace(*fullName)
		if name == "" {
			return shared.NewValidationError("Full name cannot be empty")
		}
		u.FullName = name
	}
	if phone != nil {
		if len(*phone) > 50 {
			return shared.NewValidationError("Phone cannot exceed 50 characters")
		}
		u.Phone = strings.TrimSpace(*phone)
	}
	if telegramChatID != nil {
		u.TelegramChatID = strings.TrimSpace(*telegramChatID)
	}
	u.Touch()
	return nil
}

// ChangePassword verifies the old password and sets the new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword compares a plaintext password with the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate blocks further logins
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
}

// HasTelegram reports whether the user linked a Telegram chat
func (u *User) HasTelegram() bool {
	return u.TelegramChatID != ""
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks length and basic syntax
func ValidateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
