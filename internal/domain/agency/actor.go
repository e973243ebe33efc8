package agency

import (
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Actor is the authenticated caller as seen by the CRM services
type Actor struct {
	UserID   uuid.UUID
	AgencyID uuid.UUID
	MemberID uuid.UUID
	Role     Role
}

// NewActor builds an actor for a membership
func NewActor(m *Member) Actor {
	return Actor{
		UserID:   m.UserID,
		AgencyID: m.AgencyID,
		MemberID: m.ID,
		Role:     m.Role,
	}
}

// HasAgency reports whether the caller acts inside an agency
func (a Actor) HasAgency() bool {
	return a.AgencyID != uuid.Nil && a.MemberID != uuid.Nil
}

// IsManager reports whether the caller is an owner or admin
func (a Actor) IsManager() bool {
	return a.Role.IsManager()
}

// RequireAgency fails when the caller has no agency membership
func (a Actor) RequireAgency() error {
	if !a.HasAgency() {
		return shared.NewForbiddenError("An agency membership is required")
	}
	return nil
}

// RequireManager fails unless the caller is an owner or admin of their agency
func (a Actor) RequireManager() error {
	if err := a.RequireAgency(); err != nil {
		return err
	}
	if !a.IsManager() {
		return shared.NewForbiddenError("Only agency owners and admins can perform this action")
	}
	return nil
}

// CanAccess fails with FORBIDDEN when the record belongs to another agency
func (a Actor) CanAccess(agencyID uuid.UUID) error {
	if err := a.RequireAgency(); err != nil {
		return err
	}
	if agencyID != a.AgencyID {
		return shared.NewForbiddenError("Resource belongs to another agency")
	}
	return nil
}

// CanModify allows managers everything inside their agency and agents only
// records that are assigned to them or not assigned at all.
func (a Actor) CanModify(agencyID uuid.UUID, ownerMemberID *uuid.UUID) error {
	if err := a.CanAccess(agencyID); err != nil {
		return err
	}
	if a.IsManager() {
		return nil
	}
	if ownerMemberID == nil || *ownerMemberID == uuid.Nil || *ownerMemberID == a.MemberID {
		return nil
	}
	return shared.NewForbiddenError("Record is assigned to another member")
}
