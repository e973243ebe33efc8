package agency

import (
	"regexp"
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Agency is the tenant: it owns members, leads, deals, commissions, tasks and listings.
type Agency struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(200);not null"`
	Slug    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:varchar(500)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Agency) TableName() string {
	return "agencies"
}

// NewAgency creates a new active agency
func NewAgency(name, slug string) (*Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Agency name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Agency name cannot exceed 200 characters")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	return &Agency{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		Active:     true,
	}, nil
}

// SetContact updates contact details
func (a *Agency) SetContact(email, phone, address string) {
	a.Email = strings.ToLower(strings.TrimSpace(email))
	a.Phone = strings.TrimSpace(phone)
	a.Address = strings.TrimSpace(address)
	a.Touch()
}

// Rename changes the display name
func (a *Agency) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Agency name cannot be empty")
	}
	a.Name = name
	a.Touch()
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewValidationError("Agency slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewValidationError("Agency slug cannot exceed 100 characters")
	}
	if !slugRegex.MatchString(slug) {
		return shared.NewValidationError("Agency slug may only contain lowercase letters, digits and single hyphens")
	}
	return nil
}
