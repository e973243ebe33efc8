package crm

import (
	"regexp"
	"strings"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var leadEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// LeadStatus is the qualification state of a lead
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "NEW"
	LeadStatusContacted   LeadStatus = "CONTACTED"
	LeadStatusQualified   LeadStatus = "QUALIFIED"
	LeadStatusUnqualified LeadStatus = "UNQUALIFIED"
	LeadStatusConverted   LeadStatus = "CONVERTED"
	LeadStatusLost        LeadStatus = "LOST"
)

// AllLeadStatuses lists every lead status
var AllLeadStatuses = []LeadStatus{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
	LeadStatusUnqualified, LeadStatusConverted, LeadStatusLost,
}

// IsValid reports whether the status is known
func (s LeadStatus) IsValid() bool {
	for _, v := range AllLeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsClosed reports whether the lead left the funnel
func (s LeadStatus) IsClosed() bool {
	return s == LeadStatusConverted || s == LeadStatusLost
}

// LeadSource is where a lead came from
type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "WEBSITE"
	LeadSourceReferral LeadSource = "REFERRAL"
	LeadSourcePortal   LeadSource = "PORTAL"
	LeadSourceSocial   LeadSource = "SOCIAL"
	LeadSourceWalkIn   LeadSource = "WALK_IN"
	LeadSourceOther    LeadSource = "OTHER"
)

// AllLeadSources lists every lead source
var AllLeadSources = []LeadSource{
	LeadSourceWebsite, LeadSourceReferral, LeadSourcePortal,
	LeadSourceSocial, LeadSourceWalkIn, LeadSourceOther,
}

// IsValid reports whether the source is known
func (s LeadSource) IsValid() bool {
	for _, v := range AllLeadSources {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts user input into a LeadStatus
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("Invalid lead status: " + s)
	}
	return st, nil
}

// ParseLeadSource converts user input into a LeadSource
func ParseLeadSource(s string) (LeadSource, error) {
	src := LeadSource(strings.ToUpper(strings.TrimSpace(s)))
	if !src.IsValid() {
		return "", shared.NewValidationError("Invalid lead source: " + s)
	}
	return src, nil
}

// Lead is a prospective buyer or tenant tracked by an agency
type Lead struct {
	shared.AgencyEntity
	AssignedToID      *uuid.UUID       `gorm:"type:uuid;index"`
	PropertyID        *uuid.UUID       `gorm:"type:uuid;index"`
	FullName          string           `gorm:"type:varchar(200);not null"`
	Email             string           `gorm:"type:varchar(200);index"`
	Phone             string           `gorm:"type:varchar(50)"`
	Source            LeadSource       `gorm:"type:varchar(20);not null;default:'OTHER'"`
	Status            LeadStatus       `gorm:"type:varchar(20);not null;default:'NEW';index"`
	BudgetMin         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	BudgetMax         *decimal.Decimal `gorm:"type:decimal(18,2)"`
	PreferredDistrict string           `gorm:"type:varchar(100)"`
	Notes             string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a NEW lead. At least one of email or phone is required.
func NewLead(agencyID uuid.UUID, fullName, email, phone string, source LeadSource) (*Lead, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewValidationError("Lead full name cannot be empty")
	}
	if len(fullName) > 200 {
		return nil, shared.NewValidationError("Lead full name cannot exceed 200 characters")
	}
	if source == "" {
		source = LeadSourceOther
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("Invalid lead source")
	}

	l := &Lead{
		AgencyEntity: shared.NewAgencyEntity(agencyID),
		FullName:     fullName,
		Source:       source,
		Status:       LeadStatusNew,
	}
	if err := l.SetContact(email, phone); err != nil {
		return nil, err
	}
	return l, nil
}

// SetContact validates and stores contact details
func (l *Lead) SetContact(email, phone string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return shared.NewValidationError("Lead needs an email or a phone number")
	}
	if email != "" && !leadEmailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	if len(phone) > 50 {
		return shared.NewValidationError("Phone cannot exceed 50 characters")
	}
	l.Email = email
	l.Phone = phone
	l.Touch()
	return nil
}

// SetName renames the lead
func (l *Lead) SetName(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewValidationError("Lead full name cannot be empty")
	}
	l.FullName = fullName
	l.Touch()
	return nil
}

// SetSource changes the lead source
func (l *Lead) SetSource(source LeadSource) error {
	if !source.IsValid() {
		return shared.NewValidationError("Invalid lead source")
	}
	l.Source = source
	l.Touch()
	return nil
}

// SetBudget sets the budget range; min must not exceed max when both are present
func (l *Lead) SetBudget(min, max *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return shared.NewValidationError("Budget minimum cannot be negative")
	}
	if max != nil && max.IsNegative() {
		return shared.NewValidationError("Budget maximum cannot be negative")
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return shared.NewValidationError("Budget minimum cannot exceed maximum")
	}
	l.BudgetMin = min
	l.BudgetMax = max
	l.Touch()
	return nil
}

// SetPreferences sets the free-form preference fields
func (l *Lead) SetPreferences(district, notes string) {
	l.PreferredDistrict = strings.TrimSpace(district)
	l.Notes = strings.TrimSpace(notes)
	l.Touch()
}

// SetProperty links the listing the lead asked about
func (l *Lead) SetProperty(propertyID *uuid.UUID) {
	l.PropertyID = propertyID
	l.Touch()
}

// AssignTo sets the responsible member, nil unassigns
func (l *Lead) AssignTo(memberID *uuid.UUID) {
	l.AssignedToID = memberID
	l.Touch()
}

// ChangeStatus moves the lead through the funnel.
// Converted or lost leads cannot go back to NEW.
func (l *Lead) ChangeStatus(status LeadStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid lead status")
	}
	if l.Status == status {
		return nil
	}
	if l.Status.IsClosed() && status == LeadStatusNew {
		return shared.NewInvalidStateError("A " + string(l.Status) + " lead cannot be reset to NEW")
	}
	l.Status = status
	l.Touch()
	return nil
}
