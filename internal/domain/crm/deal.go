package crm

import (
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealStage is a deal's pipeline position
type DealStage string

const (
	DealStageNew         DealStage = "NEW"
	DealStageNegotiation DealStage = "NEGOTIATION"
	DealStageContract    DealStage = "CONTRACT"
	DealStageClosedWon   DealStage = "CLOSED_WON"
	DealStageClosedLost  DealStage = "CLOSED_LOST"
)

// IsValid reports whether the stage is known
func (s DealStage) IsValid() bool {
	switch s {
	case DealStageNew, DealStageNegotiation, DealStageContract, DealStageClosedWon, DealStageClosedLost:
		return true
	}
	return false
}

// IsClosed reports whether the stage is terminal
func (s DealStage) IsClosed() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// ParseDealStage converts user input into a DealStage
func ParseDealStage(s string) (DealStage, error) {
	st := DealStage(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("Invalid deal stage: " + s)
	}
	return st, nil
}

// Deal is a pipeline record tracking a transaction from lead to closed sale
type Deal struct {
	shared.AgencyEntity
	LeadID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID        *uuid.UUID      `gorm:"type:uuid;index"`
	AgentID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title             string          `gorm:"type:varchar(200);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency          string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Stage             DealStage       `gorm:"type:varchar(20);not null;default:'NEW';index"`
	CommissionRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time
	LostReason        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Deal) TableName() string {
	return "deals"
}

// NewDeal opens a deal at stage NEW
func NewDeal(agencyID, leadID, agentID uuid.UUID, title string, amount decimal.Decimal, currency string) (*Deal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Deal title cannot be empty")
	}
	if leadID == uuid.Nil {
		return nil, shared.NewValidationError("Deal requires a lead")
	}
	if agentID == uuid.Nil {
		return nil, shared.NewValidationError("Deal requires an agent")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Deal amount cannot be negative")
	}
	currency = normalizeCurrency(currency)
	if len(currency) != 3 {
		return nil, shared.NewValidationError("Currency must be a 3-letter ISO code")
	}

	return &Deal{
		AgencyEntity:   shared.NewAgencyEntity(agencyID),
		LeadID:         leadID,
		AgentID:        agentID,
		Title:          title,
		Amount:         amount,
		Currency:       currency,
		Stage:          DealStageNew,
		CommissionRate: decimal.Zero,
	}, nil
}

// SetCommissionRate sets the agent commission percent (0..100)
func (d *Deal) SetCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Commission rate must be between 0 and 100")
	}
	d.CommissionRate = rate
	d.Touch()
	return nil
}

// SetAmount changes the deal value. Closed deals are frozen.
func (d *Deal) SetAmount(amount decimal.Decimal) error {
	if d.Stage.IsClosed() {
		return shared.NewInvalidStateError("Closed deals cannot be edited")
	}
	if amount.IsNegative() {
		return shared.NewValidationError("Deal amount cannot be negative")
	}
	d.Amount = amount
	d.Touch()
	return nil
}

// SetTitle renames the deal
func (d *Deal) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("Deal title cannot be empty")
	}
	d.Title = title
	d.Touch()
	return nil
}

// SetAgent reassigns the deal
func (d *Deal) SetAgent(agentID uuid.UUID) {
	d.AgentID = agentID
	d.Touch()
}

// SetProperty links the listing being transacted
func (d *Deal) SetProperty(propertyID *uuid.UUID) {
	d.PropertyID = propertyID
	d.Touch()
}

// SetExpectedCloseDate sets the forecast close date
func (d *Deal) SetExpectedCloseDate(t *time.Time) {
	d.ExpectedCloseDate = t
	d.Touch()
}

// ChangeStage moves the deal. Closed stages are terminal; entering one stamps ClosedAt.
// CLOSED_LOST requires a reason.
func (d *Deal) ChangeStage(stage DealStage, lostReason string) error {
	if !stage.IsValid() {
		return shared.NewValidationError("Invalid deal stage")
	}
	if d.Stage.IsClosed() {
		return shared.NewInvalidStateError("Deal is already closed as " + string(d.Stage))
	}
	if d.Stage == stage {
		return nil
	}
	if stage == DealStageClosedLost {
		lostReason = strings.TrimSpace(lostReason)
		if lostReason == "" {
			return shared.NewValidationError("A lost reason is required to close a deal as lost")
		}
		d.LostReason = lostReason
	}
	d.Stage = stage
	if stage.IsClosed() {
		now := time.Now().UTC()
		d.ClosedAt = &now
	}
	d.Touch()
	return nil
}

// CommissionAmount returns amount * rate / 100 rounded to cents
func (d *Deal) CommissionAmount() decimal.Decimal {
	return d.Amount.Mul(d.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
}

// IsWon reports whether the deal closed successfully
func (d *Deal) IsWon() bool {
	return d.Stage == DealStageClosedWon
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return "USD"
	}
	return c
}
