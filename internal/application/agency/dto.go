package agency

import (
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// CreateAgencyInput contains the input for creating an agency.
// An empty Slug is derived from Name.
type CreateAgencyInput struct {
	Name       string
	Slug       string
	Email      string
	Phone      string
	Address    string
	OwnerTitle string
}

// UpdateAgencyInput changes agency details; nil fields stay untouched
type UpdateAgencyInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// AgencyResult is the public view of an agency
type AgencyResult struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	Email     string
	Phone     string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	// Owner is set only by CreateAgency
	Owner *MemberResult
}

// AddMemberInput invites an existing user by email
type AddMemberInput struct {
	Email string
	Role  string
	Title string
}

// UpdateMemberInput changes a membership; nil fields stay untouched
type UpdateMemberInput struct {
	Role   *string
	Title  *string
	Active *bool
}

// MemberResult is a membership joined with its user
type MemberResult struct {
	ID       uuid.UUID
	AgencyID uuid.UUID
	UserID   uuid.UUID
	FullName string
	Email    string
	Role     agency.Role
	Title    string
	Active   bool
	JoinedAt time.Time
}

// ToAgencyResult converts an agency to its public view
func ToAgencyResult(a *agency.Agency) AgencyResult {
	return AgencyResult{
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
}

// ToMemberResult converts a member; user may be nil when it could not be loaded
func ToMemberResult(m *agency.Member, user *identity.User) MemberResult {
	r := MemberResult{
		ID:       m.ID,
		AgencyID: m.AgencyID,
		UserID:   m.UserID,
		Role:     m.Role,
		Title:    m.Title,
		Active:   m.Active,
		JoinedAt: m.JoinedAt,
	}
	if user != nil {
		r.FullName = user.FullName
		r.Email = user.Email
	}
	return r
}
