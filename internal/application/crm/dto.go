package crm

import (
	"time"

	"github.com/estatehub/backend/internal/domain/crm"
	csvimport "github.com/estatehub/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadInput contains the input for creating a lead
type CreateLeadInput struct {
	FullName          string
	Email             string
	Phone             string
	Source            string
	BudgetMin         *decimal.Decimal
	BudgetMax         *decimal.Decimal
	PreferredDistrict string
	Notes             string
	PropertyID        *uuid.UUID
	AssignedToID      *uuid.UUID
}

// UpdateLeadInput changes lead fields; nil fields stay untouched
type UpdateLeadInput struct {
	FullName          *string
	Email             *string
	Phone             *string
	Source            *string
	BudgetMin         *decimal.Decimal
	BudgetMax         *decimal.Decimal
	PreferredDistrict *string
	Notes             *string
	PropertyID        *uuid.UUID
	// ClearProperty unlinks the property; PropertyID is ignored when set
	ClearProperty bool
}

// LeadResult is the public view of a lead
type LeadResult struct {
	ID                uuid.UUID
	AgencyID          uuid.UUID
	AssignedToID      *uuid.UUID
	PropertyID        *uuid.UUID
	FullName          string
	Email             string
	Phone             string
	Source            crm.LeadSource
	Status            crm.LeadStatus
	BudgetMin         *decimal.Decimal
	BudgetMax         *decimal.Decimal
	PreferredDistrict string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ImportResult reports a CSV lead import
type ImportResult struct {
	TotalRows int
	Created   int
	Failed    int
	Errors    []csvimport.RowError
	// Truncated is set when more row errors occurred than were kept
	Truncated bool
}

// CreateDealInput contains the input for opening a deal
type CreateDealInput struct {
	LeadID            uuid.UUID
	PropertyID        *uuid.UUID
	AgentID           *uuid.UUID
	Title             string
	Amount            decimal.Decimal
	Currency          string
	CommissionRate    *decimal.Decimal
	ExpectedCloseDate *time.Time
}

// UpdateDealInput changes deal fields; nil fields stay untouched
type UpdateDealInput struct {
	Title             *string
	Amount            *decimal.Decimal
	CommissionRate    *decimal.Decimal
	AgentID           *uuid.UUID
	PropertyID        *uuid.UUID
	ExpectedCloseDate *time.Time
}

// ChangeStageInput moves a deal through the pipeline
type ChangeStageInput struct {
	Stage      string
	LostReason string
}

// DealResult is the public view of a deal
type DealResult struct {
	ID                uuid.UUID
	AgencyID          uuid.UUID
	LeadID            uuid.UUID
	PropertyID        *uuid.UUID
	AgentID           uuid.UUID
	Title             string
	Amount            decimal.Decimal
	Currency          string
	Stage             crm.DealStage
	CommissionRate    decimal.Decimal
	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time
	LostReason        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	// Commission is set when closing the deal created one
	Commission *CommissionResult
}

// CreateCommissionInput contains the input for a manual commission
type CreateCommissionInput struct {
	DealID   uuid.UUID
	MemberID uuid.UUID
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	Currency string
}

// CommissionResult is the public view of a commission
type CommissionResult struct {
	ID         uuid.UUID
	AgencyID   uuid.UUID
	DealID     uuid.UUID
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	Rate       decimal.Decimal
	Currency   string
	Status     crm.CommissionStatus
	ApprovedAt *time.Time
	PaidAt     *time.Time
	Note       string
	CreatedAt  time.Time
}

// CommissionSummary totals commissions per status
type CommissionSummary struct {
	MemberID *uuid.UUID
	Totals   []crm.CommissionTotals
	// Outstanding is PENDING plus APPROVED, keyed by currency
	Outstanding map[string]decimal.Decimal
	Paid        map[string]decimal.Decimal
}

// CreateTaskInput contains the input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	AssigneeID  *uuid.UUID
	LeadID      *uuid.UUID
	DealID      *uuid.UUID
	DueAt       *time.Time
}

// UpdateTaskInput changes task fields; nil fields stay untouched
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	AssigneeID  *uuid.UUID
	LeadID      *uuid.UUID
	DealID      *uuid.UUID
	DueAt       *time.Time
	// ClearDueAt removes the deadline; DueAt is ignored when set
	ClearDueAt bool
}

// TaskResult is the public view of a task
type TaskResult struct {
	ID                uuid.UUID
	AgencyID          uuid.UUID
	AssigneeID        uuid.UUID
	CreatorID         *uuid.UUID
	LeadID            *uuid.UUID
	DealID            *uuid.UUID
	Title             string
	Description       string
	Priority          crm.TaskPriority
	Status            crm.TaskStatus
	DueAt             *time.Time
	CompletedAt       *time.Time
	Overdue           bool
	ReminderSentAt    *time.Time
	OverdueNotifiedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ToLeadResult converts a lead to its public view
func ToLeadResult(l *crm.Lead) LeadResult {
	return LeadResult{
		ID:                l.ID,
		AgencyID:          l.AgencyID,
		AssignedToID:      l.AssignedToID,
		PropertyID:        l.PropertyID,
		FullName:          l.FullName,
		Email:             l.Email,
		Phone:             l.Phone,
		Source:            l.Source,
		Status:            l.Status,
		BudgetMin:         l.BudgetMin,
		BudgetMax:         l.BudgetMax,
		PreferredDistrict: l.PreferredDistrict,
		Notes:             l.Notes,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// ToDealResult converts a deal to its public view
func ToDealResult(d *crm.Deal) DealResult {
	return DealResult{
		ID:                d.ID,
		AgencyID:          d.AgencyID,
		LeadID:            d.LeadID,
		PropertyID:        d.PropertyID,
		AgentID:           d.AgentID,
		Title:             d.Title,
		Amount:            d.Amount,
		Currency:          d.Currency,
		Stage:             d.Stage,
		CommissionRate:    d.CommissionRate,
		ExpectedCloseDate: d.ExpectedCloseDate,
		ClosedAt:          d.ClosedAt,
		LostReason:        d.LostReason,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// ToCommissionResult converts a commission to its public view
func ToCommissionResult(c *crm.Commission) CommissionResult {
	return CommissionResult{
		ID:         c.ID,
		AgencyID:   c.AgencyID,
		DealID:     c.DealID,
		MemberID:   c.MemberID,
		Amount:     c.Amount,
		Rate:       c.Rate,
		Currency:   c.Currency,
		Status:     c.Status,
		ApprovedAt: c.ApprovedAt,
		PaidAt:     c.PaidAt,
		Note:       c.Note,
		CreatedAt:  c.CreatedAt,
	}
}

// ToTaskResult converts a task to its public view
func ToTaskResult(t *crm.Task, now time.Time) TaskResult {
	return TaskResult{
		ID:                t.ID,
		AgencyID:          t.AgencyID,
		AssigneeID:        t.AssigneeID,
		CreatorID:         t.CreatorID,
		LeadID:            t.LeadID,
		DealID:            t.DealID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          t.Priority,
		Status:            t.Status,
		DueAt:             t.DueAt,
		CompletedAt:       t.CompletedAt,
		Overdue:           t.IsOverdue(now),
		ReminderSentAt:    t.ReminderSentAt,
		OverdueNotifiedAt: t.OverdueNotifiedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func toResults[E any, R any](items []E, convert func(*E) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}
