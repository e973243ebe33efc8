package crm

import (
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionStatus is the payout state of a commission
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "PENDING"
	CommissionStatusApproved  CommissionStatus = "APPROVED"
	CommissionStatusPaid      CommissionStatus = "PAID"
	CommissionStatusCancelled CommissionStatus = "CANCELLED"
)

// AllCommissionStatuses lists every commission status
var AllCommissionStatuses = []CommissionStatus{
	CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid, CommissionStatusCancelled,
}

// IsValid reports whether the status is known
func (s CommissionStatus) IsValid() bool {
	for _, v := range AllCommissionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Commission is the agent's share of a closed deal
type Commission struct {
	shared.AgencyEntity
	DealID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	MemberID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Rate       decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	Currency   string           `gorm:"type:varchar(3);not null;default:'USD'"`
	Status     CommissionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApprovedAt *time.Time
	PaidAt     *time.Time
	Note       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Commission) TableName() string {
	return "commissions"
}

// NewCommission creates a PENDING commission
func NewCommission(agencyID, dealID, memberID uuid.UUID, amount, rate decimal.Decimal, currency string) (*Commission, error) {
	if dealID == uuid.Nil {
		return nil, shared.NewValidationError("Commission requires a deal")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewValidationError("Commission requires a member")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Commission amount must be positive")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("Commission rate must be between 0 and 100")
	}
	return &Commission{
		AgencyEntity: shared.NewAgencyEntity(agencyID),
		DealID:       dealID,
		MemberID:     memberID,
		Amount:       amount.Round(2),
		Rate:         rate,
		Currency:     normalizeCurrency(currency),
		Status:       CommissionStatusPending,
	}, nil
}

// NewCommissionForDeal derives the commission from a won deal.
// Returns nil when the deal carries no commission rate.
func NewCommissionForDeal(d *Deal) (*Commission, error) {
	if !d.IsWon() {
		return nil, shared.NewInvalidStateError("Commission can only be created for a won deal")
	}
	if !d.CommissionRate.IsPositive() {
		return nil, nil
	}
	return NewCommission(d.AgencyID, d.ID, d.AgentID, d.CommissionAmount(), d.CommissionRate, d.Currency)
}

// Approve moves PENDING to APPROVED
func (c *Commission) Approve() error {
	if c.Status != CommissionStatusPending {
		return shared.NewInvalidStateError("Only pending commissions can be approved")
	}
	now := time.Now().UTC()
	c.Status = CommissionStatusApproved
	c.ApprovedAt = &now
	c.Touch()
	return nil
}

// MarkPaid moves APPROVED to PAID
func (c *Commission) MarkPaid() error {
	if c.Status != CommissionStatusApproved {
		return shared.NewInvalidStateError("Only approved commissions can be paid")
	}
	now := time.Now().UTC()
	c.Status = CommissionStatusPaid
	c.PaidAt = &now
	c.Touch()
	return nil
}

// Cancel voids a pending or approved commission
func (c *Commission) Cancel(note string) error {
	if c.Status != CommissionStatusPending && c.Status != CommissionStatusApproved {
		return shared.NewInvalidStateError("Only pending or approved commissions can be cancelled")
	}
	c.Status = CommissionStatusCancelled
	if note = strings.TrimSpace(note); note != "" {
		c.Note = note
	}
	c.Touch()
	return nil
}

// CommissionTotals aggregates commission amounts per status and currency.
// Amounts in different currencies are never added together.
type CommissionTotals struct {
	Status   CommissionStatus
	Currency string
	Count    int64
	Amount   decimal.Decimal
}
