package agency

import (
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is a member's role inside one agency
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleAgent:
		return true
	}
	return false
}

// IsManager reports whether the role may manage every record in the agency
func (r Role) IsManager() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ParseRole converts a string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewValidationError("Invalid member role: " + s)
	}
	return r, nil
}

// Member is a user's role-scoped membership within one agency
type Member struct {
	shared.AgencyEntity
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Role     Role      `gorm:"type:varchar(20);not null"`
	Title    string    `gorm:"type:varchar(100)"`
	Active   bool      `gorm:"not null;default:true"`
	JoinedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Member) TableName() string {
	return "members"
}

// NewMember creates an active membership
func NewMember(agencyID, userID uuid.UUID, role Role, title string) (*Member, error) {
	if agencyID == uuid.Nil {
		return nil, shared.NewValidationError("Agency ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid member role")
	}
	m := &Member{
		AgencyEntity: shared.NewAgencyEntity(agencyID),
		UserID:       userID,
		Role:         role,
		Title:        strings.TrimSpace(title),
		Active:       true,
	}
	m.JoinedAt = m.CreatedAt
	return m, nil
}

// ChangeRole sets a new role
func (m *Member) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewValidationError("Invalid member role")
	}
	m.Role = role
	m.Touch()
	return nil
}

// SetTitle sets the job title shown in the CRM
func (m *Member) SetTitle(title string) {
	m.Title = strings.TrimSpace(title)
	m.Touch()
}

// SetActive enables or disables the membership
func (m *Member) SetActive(active bool) {
	m.Active = active
	m.Touch()
}

// IsOwner reports whether the member owns the agency
func (m *Member) IsOwner() bool {
	return m.Role == RoleOwner
}

// IsActiveOwner reports whether the member counts toward the agency's owners
func (m *Member) IsActiveOwner() bool {
	return m.IsOwner() && m.Active
}
