package crm

import (
	"context"
	"fmt"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CommissionService handles commission payouts
type CommissionService struct {
	commissionRepo crm.CommissionRepository
	dealRepo       crm.DealRepository
	scope          memberScope
	logger         *zap.Logger
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	commissionRepo crm.CommissionRepository,
	dealRepo crm.DealRepository,
	memberRepo agency.MemberRepository,
	notifier Notifier,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		dealRepo:       dealRepo,
		scope:          memberScope{memberRepo: memberRepo, notifier: notifier, logger: logger},
		logger:         logger,
	}
}

// Create records a manual commission on a won deal. Managers only.
func (s *CommissionService) Create(ctx context.Context, actor agency.Actor, input CreateCommissionInput) (*CommissionResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	deal, err := s.dealRepo.FindByID(ctx, input.DealID)
	if err != nil {
		return nil, lookupError("Deal", err)
	}
	if err := actor.CanAccess(deal.AgencyID); err != nil {
		return nil, err
	}
	if !deal.IsWon() {
		return nil, shared.NewInvalidStateError("Commissions can only be recorded for won deals")
	}
	member, err := s.scope.member(ctx, actor, input.MemberID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = deal.Currency
	}
	c, err := crm.NewCommission(actor.AgencyID, deal.ID, member.ID, input.Amount, input.Rate, currency)
	if err != nil {
		return nil, err
	}
	if err := s.commissionRepo.Save(ctx, c); err != nil {
		return nil, internalError("Failed to create commission", err)
	}
	s.notifyStatus(ctx, member, c)

	result := ToCommissionResult(c)
	return &result, nil
}

// Get returns a commission. Agents can only see their own.
func (s *CommissionService) Get(ctx context.Context, actor agency.Actor, id uuid.UUID) (*CommissionResult, error) {
	c, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && c.MemberID != actor.MemberID {
		return nil, shared.NewForbiddenError("Commission belongs to another member")
	}
	result := ToCommissionResult(c)
	return &result, nil
}

// List lists commissions. Filter keys: status, member_id, deal_id.
// Agents always get their own commissions only.
func (s *CommissionService) List(ctx context.Context, actor agency.Actor, filter shared.Filter) (*shared.Paginated[CommissionResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	if !actor.IsManager() {
		filter = filter.With("member_id", actor.MemberID)
	}
	list, err := s.commissionRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to list commissions", err)
	}
	total, err := s.commissionRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to count commissions", err)
	}
	page := shared.NewPaginated(toResults(list, ToCommissionResult), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Approve moves PENDING to APPROVED. Managers only.
func (s *CommissionService) Approve(ctx context.Context, actor agency.Actor, id uuid.UUID) (*CommissionResult, error) {
	return s.transition(ctx, actor, id, (*crm.Commission).Approve)
}

// MarkPaid moves APPROVED to PAID. Managers only.
func (s *CommissionService) MarkPaid(ctx context.Context, actor agency.Actor, id uuid.UUID) (*CommissionResult, error) {
	return s.transition(ctx, actor, id, (*crm.Commission).MarkPaid)
}

// Cancel voids a PENDING or APPROVED commission. Managers only.
func (s *CommissionService) Cancel(ctx context.Context, actor agency.Actor, id uuid.UUID, note string) (*CommissionResult, error) {
	return s.transition(ctx, actor, id, func(c *crm.Commission) error { return c.Cancel(note) })
}

// Summary totals commissions per status and currency for one member or, when
// memberID is nil, the whole agency. Agents always get their own totals.
func (s *CommissionService) Summary(ctx context.Context, actor agency.Actor, memberID *uuid.UUID) (*CommissionSummary, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	if !actor.IsManager() {
		own := actor.MemberID
		memberID = &own
	}
	totals, err := s.commissionRepo.Totals(ctx, actor.AgencyID, memberID)
	if err != nil {
		return nil, internalError("Failed to summarise commissions", err)
	}

	summary := &CommissionSummary{
		MemberID:    memberID,
		Totals:      totals,
		Outstanding: make(map[string]decimal.Decimal),
		Paid:        make(map[string]decimal.Decimal),
	}
	for _, t := range totals {
		outstanding, paid := summary.Outstanding[t.Currency], summary.Paid[t.Currency]
		switch t.Status {
		case crm.CommissionStatusPending, crm.CommissionStatusApproved:
			outstanding = outstanding.Add(t.Amount)
		case crm.CommissionStatusPaid:
			paid = paid.Add(t.Amount)
		}
		summary.Outstanding[t.Currency], summary.Paid[t.Currency] = outstanding, paid
	}
	return summary, nil
}

func (s *CommissionService) transition(ctx context.Context, actor agency.Actor, id uuid.UUID, apply func(*crm.Commission) error) (*CommissionResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := c.Status
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := s.commissionRepo.Save(ctx, c); err != nil {
		return nil, internalError("Failed to update commission", err)
	}

	s.logger.Info("Commission status changed",
		zap.String("commission_id", c.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(c.Status)))

	s.scope.notifyMemberID(ctx, c.MemberID, notification.TypeCommissionStatus,
		commissionTitle(c), commissionBody(c), "commission", c.ID)
	result := ToCommissionResult(c)
	return &result, nil
}

func (s *CommissionService) notifyStatus(ctx context.Context, member *agency.Member, c *crm.Commission) {
	s.scope.notify(ctx, member, notification.TypeCommissionStatus, commissionTitle(c), commissionBody(c), "commission", c.ID)
}

func (s *CommissionService) find(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Commission, error) {
	c, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Commission", err)
	}
	if err := actor.CanAccess(c.AgencyID); err != nil {
		return nil, err
	}
	return c, nil
}

func commissionTitle(c *crm.Commission) string {
	return fmt.Sprintf("Commission %s", c.Status)
}

func commissionBody(c *crm.Commission) string {
	body := fmt.Sprintf("%s %s is now %s", c.Amount.StringFixed(2), c.Currency, c.Status)
	if c.Note != "" {
		body += ": " + c.Note
	}
	return body
}
