package handler

import (
	"time"

	"github.com/estatehub/backend/internal/application/agency"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
)

// CreateAgencyRequest represents the request body for creating an agency
type CreateAgencyRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=200"`
	Slug       string `json:"slug" binding:"omitempty,max=100,slug"`
	Email      string `json:"email" binding:"omitempty,email,max=255"`
	Phone      string `json:"phone" binding:"omitempty,max=50"`
	Address    string `json:"address" binding:"omitempty,max=500"`
	OwnerTitle string `json:"owner_title" binding:"omitempty,max=100"`
}

// UpdateAgencyRequest represents the request body for updating the current agency
type UpdateAgencyRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=200"`
	Email   *string `json:"email" binding:"omitempty,email,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
}

// AddMemberRequest invites a registered user into the agency
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=OWNER ADMIN AGENT owner admin agent"`
	Title string `json:"title" binding:"omitempty,max=100"`
}

// UpdateMemberRequest changes a membership
type UpdateMemberRequest struct {
	Role   *string `json:"role" binding:"omitempty,oneof=OWNER ADMIN AGENT owner admin agent"`
	Title  *string `json:"title" binding:"omitempty,max=100"`
	Active *bool   `json:"active"`
}

// ListMembersRequest filters the member list
type ListMembersRequest struct {
	dto.ListRequest
	Role   string `form:"role" binding:"omitempty,oneof=OWNER ADMIN AGENT owner admin agent"`
	Active *bool  `form:"active"`
}

// AgencyResponse is the API view of an agency
type AgencyResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Owner     *MemberResponse `json:"owner,omitempty"`
}

// MemberResponse is the API view of a membership
type MemberResponse struct {
	ID       uuid.UUID `json:"id"`
	AgencyID uuid.UUID `json:"agency_id"`
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Title    string    `json:"title,omitempty"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joined_at"`
}

func toAgencyResponse(a *agency.AgencyResult) AgencyResponse {
	resp := AgencyResponse{
		ID:        a.ID,
		Name:      a.Name,
		Slug:      a.Slug,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   a.Address,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Owner != nil {
		owner := toMemberResponse(a.Owner)
		resp.Owner = &owner
	}
	return resp
}

func toMemberResponse(m *agency.MemberResult) MemberResponse {
	return MemberResponse{
		ID:       m.ID,
		AgencyID: m.AgencyID,
		UserID:   m.UserID,
		FullName: m.FullName,
		Email:    m.Email,
		Role:     string(m.Role),
		Title:    m.Title,
		Active:   m.Active,
		JoinedAt: m.JoinedAt,
	}
}
