package handler

import (
	"time"

	"github.com/estatehub/backend/internal/application/identity"
	"github.com/google/uuid"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for sign-up
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"required,min=1,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=50"`
}

// LoginRequest represents the request body for user login.
// AgencyID picks the membership the token is scoped to.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
	AgencyID string `json:"agency_id" binding:"omitempty,uuid"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest represents the request body for PUT /auth/me
type UpdateProfileRequest struct {
	FullName       *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
	TelegramChatID *string `json:"telegram_chat_id" binding:"omitempty,max=64"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserResponse represents user data in auth responses
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone,omitempty"`
	TelegramChatID string     `json:"telegram_chat_id,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MembershipResponse is one agency membership of the user
type MembershipResponse struct {
	MemberID uuid.UUID `json:"member_id"`
	AgencyID uuid.UUID `json:"agency_id"`
	Role     string    `json:"role"`
	Title    string    `json:"title,omitempty"`
	Active   bool      `json:"active"`
}

// AuthResponse represents the response body for login and refresh
type AuthResponse struct {
	Token      TokenResponse       `json:"token"`
	User       UserResponse        `json:"user"`
	Membership *MembershipResponse `json:"membership,omitempty"`
}

// CurrentUserResponse represents the response body for GET /auth/me
type CurrentUserResponse struct {
	User            UserResponse         `json:"user"`
	Memberships     []MembershipResponse `json:"memberships"`
	CurrentMemberID *uuid.UUID           `json:"current_member_id,omitempty"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *identity.UserInfo) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		TelegramChatID: u.TelegramChatID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

func toMembershipResponse(m *identity.MembershipInfo) MembershipResponse {
	return MembershipResponse{
		MemberID: m.MemberID,
		AgencyID: m.AgencyID,
		Role:     string(m.Role),
		Title:    m.Title,
		Active:   m.Active,
	}
}

func toAuthResponse(r *identity.AuthResult) AuthResponse {
	resp := AuthResponse{
		Token: TokenResponse{
			AccessToken:           r.AccessToken,
			RefreshToken:          r.RefreshToken,
			AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
			TokenType:             r.TokenType,
		},
		User: toUserResponse(&r.User),
	}
	if r.Membership != nil {
		m := toMembershipResponse(r.Membership)
		resp.Membership = &m
	}
	return resp
}
