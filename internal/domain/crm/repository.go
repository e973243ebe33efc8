package crm

import (
	"context"
	"time"

	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines persistence for leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Lead, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, lead *Lead) error
	SaveBatch(ctx context.Context, leads []*Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClosedWon groups the rows written when a deal closes as won.
// Commission, Lead and Property are optional.
type ClosedWon struct {
	Deal       *Deal
	Commission *Commission
	Lead       *Lead
	Property   *listing.Property
}

// DealRepository defines persistence for deals
type DealRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Deal, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Deal, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, deal *Deal) error
	// SaveClosedWon writes the deal and its side effects in one transaction
	SaveClosedWon(ctx context.Context, w ClosedWon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommissionRepository defines persistence for commissions
type CommissionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Commission, error)
	FindByDeal(ctx context.Context, dealID uuid.UUID) ([]Commission, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Commission, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	// Totals groups by status; memberID nil aggregates the whole agency
	Totals(ctx context.Context, agencyID uuid.UUID, memberID *uuid.UUID) ([]CommissionTotals, error)
	Save(ctx context.Context, commission *Commission) error
}

// TaskRepository defines persistence for tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]Task, error)
	CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error)
	// FindDueForReminder returns open tasks due in [from, to] whose reminder was not sent
	FindDueForReminder(ctx context.Context, from, to time.Time, limit int) ([]Task, error)
	// FindOverdueUnnotified returns open tasks due before now without an overdue notice
	FindOverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]Task, error)
	Save(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
