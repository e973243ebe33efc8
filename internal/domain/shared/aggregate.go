package shared

import (
	"github.com/google/uuid"
)

// AgencyOwned is implemented by every record that belongs to an agency
type AgencyOwned interface {
	Entity
	GetAgencyID() uuid.UUID
}

// AgencyEntity extends BaseEntity with the owning agency.
// Every CRM and listing record embeds it; isolation checks compare AgencyID
// against the caller's agency.
type AgencyEntity struct {
	BaseEntity
	AgencyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// NewAgencyEntity creates a new agency-scoped entity
func NewAgencyEntity(agencyID uuid.UUID) AgencyEntity {
	return AgencyEntity{
		BaseEntity: NewBaseEntity(),
		AgencyID:   agencyID,
	}
}

// NewAgencyEntityWithCreator creates a new agency-scoped entity with creator info
func NewAgencyEntityWithCreator(agencyID, createdBy uuid.UUID) AgencyEntity {
	e := NewAgencyEntity(agencyID)
	e.CreatedBy = &createdBy
	return e
}

// GetAgencyID returns the owning agency
func (e *AgencyEntity) GetAgencyID() uuid.UUID {
	return e.AgencyID
}

// BelongsTo reports whether the record is owned by the given agency
func (e *AgencyEntity) BelongsTo(agencyID uuid.UUID) bool {
	return e.AgencyID != uuid.Nil && e.AgencyID == agencyID
}
