package identity

import (
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// LoginInput contains the input for user login.
// AgencyID selects the membership carried by the token.
type LoginInput struct {
	Email    string
	Password string
	AgencyID *uuid.UUID
}

// AuthResult is returned by Login and Refresh
type AuthResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
	Membership            *MembershipInfo
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID             uuid.UUID
	Email          string
	FullName       string
	Phone          string
	TelegramChatID string
	LastLoginAt    *time.Time
	CreatedAt      time.Time
}

// MembershipInfo is one agency membership of a user
type MembershipInfo struct {
	MemberID uuid.UUID
	AgencyID uuid.UUID
	Role     agency.Role
	Title    string
	Active   bool
}

// RefreshInput contains the input for token refresh
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput revokes the access token and, when given, the refresh token
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	TokenTTL     time.Duration
	RefreshToken string
}

// CurrentUserResult is returned by Me
type CurrentUserResult struct {
	User        UserInfo
	Memberships []MembershipInfo
	// CurrentMemberID is the membership the access token was issued for
	CurrentMemberID *uuid.UUID
}

// UpdateProfileInput changes contact fields; nil fields stay untouched
type UpdateProfileInput struct {
	UserID         uuid.UUID
	FullName       *string
	Phone          *string
	TelegramChatID *string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ToUserInfo converts a user to its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		TelegramChatID: u.TelegramChatID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

// ToMembershipInfo converts a member to its public view
func ToMembershipInfo(m *agency.Member) MembershipInfo {
	return MembershipInfo{
		MemberID: m.ID,
		AgencyID: m.AgencyID,
		Role:     m.Role,
		Title:    m.Title,
		Active:   m.Active,
	}
}
