package crm

import (
	"context"
	"fmt"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DealService handles the deal pipeline
type DealService struct {
	dealRepo     crm.DealRepository
	leadRepo     crm.LeadRepository
	propertyRepo listing.PropertyRepository
	scope        memberScope
	logger       *zap.Logger
}

// NewDealService creates a new deal service
func NewDealService(
	dealRepo crm.DealRepository,
	leadRepo crm.LeadRepository,
	propertyRepo listing.PropertyRepository,
	memberRepo agency.MemberRepository,
	notifier Notifier,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		dealRepo:     dealRepo,
		leadRepo:     leadRepo,
		propertyRepo: propertyRepo,
		scope:        memberScope{memberRepo: memberRepo, notifier: notifier, logger: logger},
		logger:       logger,
	}
}

// Create opens a deal for a lead of the caller's agency. The agent defaults to the caller.
func (s *DealService) Create(ctx context.Context, actor agency.Actor, input CreateDealInput) (*DealResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, lookupError("Lead", err)
	}
	if err := actor.CanAccess(lead.AgencyID); err != nil {
		return nil, err
	}

	agentID := actor.MemberID
	if input.AgentID != nil && *input.AgentID != actor.MemberID {
		if !actor.IsManager() {
			return nil, shared.NewForbiddenError("Agents can only open deals for themselves")
		}
		agent, err := s.scope.member(ctx, actor, *input.AgentID)
		if err != nil {
			return nil, err
		}
		agentID = agent.ID
	}

	deal, err := crm.NewDeal(actor.AgencyID, lead.ID, agentID, input.Title, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	if input.CommissionRate != nil {
		if err := deal.SetCommissionRate(*input.CommissionRate); err != nil {
			return nil, err
		}
	}
	if input.PropertyID != nil {
		if _, err := s.property(ctx, actor, *input.PropertyID); err != nil {
			return nil, err
		}
		deal.SetProperty(input.PropertyID)
	}
	deal.SetExpectedCloseDate(input.ExpectedCloseDate)

	if err := s.dealRepo.Save(ctx, deal); err != nil {
		s.logger.Error("Failed to create deal", zap.Error(err))
		return nil, internalError("Failed to create deal", err)
	}

	s.logger.Info("Deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("lead_id", lead.ID.String()),
		zap.String("amount", deal.Amount.String()))

	result := ToDealResult(deal)
	return &result, nil
}

// Get returns a deal of the caller's agency
func (s *DealService) Get(ctx context.Context, actor agency.Actor, id uuid.UUID) (*DealResult, error) {
	deal, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	result := ToDealResult(deal)
	return &result, nil
}

// Update changes deal fields. Agents may only edit their own deals.
func (s *DealService) Update(ctx context.Context, actor agency.Actor, id uuid.UUID, input UpdateDealInput) (*DealResult, error) {
	deal, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if deal.Stage.IsClosed() {
		return nil, shared.NewInvalidStateError("Closed deals cannot be edited")
	}

	if input.Title != nil {
		if err := deal.SetTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Amount != nil {
		if err := deal.SetAmount(*input.Amount); err != nil {
			return nil, err
		}
	}
	if input.CommissionRate != nil {
		if err := deal.SetCommissionRate(*input.CommissionRate); err != nil {
			return nil, err
		}
	}
	if input.AgentID != nil && *input.AgentID != deal.AgentID {
		if !actor.IsManager() {
			return nil, shared.NewForbiddenError("Only managers can reassign deals")
		}
		agent, err := s.scope.member(ctx, actor, *input.AgentID)
		if err != nil {
			return nil, err
		}
		deal.SetAgent(agent.ID)
	}
	if input.PropertyID != nil {
		if _, err := s.property(ctx, actor, *input.PropertyID); err != nil {
			return nil, err
		}
		deal.SetProperty(input.PropertyID)
	}
	if input.ExpectedCloseDate != nil {
		deal.SetExpectedCloseDate(input.ExpectedCloseDate)
	}

	if err := s.dealRepo.Save(ctx, deal); err != nil {
		return nil, internalError("Failed to update deal", err)
	}
	result := ToDealResult(deal)
	return &result, nil
}

// Delete removes an open deal. Managers only.
func (s *DealService) Delete(ctx context.Context, actor agency.Actor, id uuid.UUID) error {
	if err := actor.RequireManager(); err != nil {
		return err
	}
	deal, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}
	if deal.IsWon() {
		return shared.NewInvalidStateError("A won deal cannot be deleted")
	}
	if err := s.dealRepo.Delete(ctx, deal.ID); err != nil {
		return lookupError("Deal", err)
	}
	return nil
}

// List lists the agency's deals. Filter keys: stage, agent_id, lead_id, property_id.
func (s *DealService) List(ctx context.Context, actor agency.Actor, filter shared.Filter) (*shared.Paginated[DealResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	deals, err := s.dealRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to list deals", err)
	}
	total, err := s.dealRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to count deals", err)
	}
	page := shared.NewPaginated(toResults(deals, ToDealResult), total, filter.Page, filter.PageSize)
	return &page, nil
}

// ChangeStage moves the deal through the pipeline. CLOSED_WON creates the
// agent's commission, converts the lead and sells a SALE property in one write.
func (s *DealService) ChangeStage(ctx context.Context, actor agency.Actor, id uuid.UUID, input ChangeStageInput) (*DealResult, error) {
	stage, err := crm.ParseDealStage(input.Stage)
	if err != nil {
		return nil, err
	}
	deal, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := deal.Stage
	if err := deal.ChangeStage(stage, input.LostReason); err != nil {
		return nil, err
	}
	if previous == deal.Stage {
		result := ToDealResult(deal)
		return &result, nil
	}

	var commission *crm.Commission
	if deal.IsWon() {
		commission, err = s.closeWon(ctx, deal)
		if err != nil {
			return nil, err
		}
	} else if err := s.dealRepo.Save(ctx, deal); err != nil {
		return nil, internalError("Failed to update deal", err)
	}

	s.logger.Info("Deal stage changed",
		zap.String("deal_id", deal.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(deal.Stage)))

	if deal.AgentID != actor.MemberID {
		s.scope.notifyMemberID(ctx, deal.AgentID, notification.TypeDealStageChanged,
			fmt.Sprintf("Deal %s moved to %s", deal.Title, deal.Stage),
			fmt.Sprintf("Stage changed from %s to %s", previous, deal.Stage),
			"deal", deal.ID)
	}

	result := ToDealResult(deal)
	if commission != nil {
		c := ToCommissionResult(commission)
		result.Commission = &c
	}
	return &result, nil
}

func (s *DealService) closeWon(ctx context.Context, deal *crm.Deal) (*crm.Commission, error) {
	commission, err := crm.NewCommissionForDeal(deal)
	if err != nil {
		return nil, err
	}
	writes := crm.ClosedWon{Deal: deal, Commission: commission}

	lead, err := s.leadRepo.FindByID(ctx, deal.LeadID)
	switch {
	case err == nil:
		if lead.Status != crm.LeadStatusConverted {
			if err := lead.ChangeStatus(crm.LeadStatusConverted); err != nil {
				return nil, err
			}
			writes.Lead = lead
		}
	case !isNotFound(err):
		return nil, internalError("Failed to load lead", err)
	}

	if deal.PropertyID != nil {
		property, err := s.propertyRepo.FindByID(ctx, *deal.PropertyID)
		switch {
		case err == nil:
			if property.DealType == listing.DealTypeSale && property.Status != listing.StatusSold {
				if err := property.MarkSold(); err != nil {
					return nil, err
				}
				writes.Property = property
			}
		case !isNotFound(err):
			return nil, internalError("Failed to load property", err)
		}
	}

	if err := s.dealRepo.SaveClosedWon(ctx, writes); err != nil {
		s.logger.Error("Failed to close deal", zap.String("deal_id", deal.ID.String()), zap.Error(err))
		return nil, internalError("Failed to close deal", err)
	}
	return commission, nil
}

func (s *DealService) property(ctx context.Context, actor agency.Actor, id uuid.UUID) (*listing.Property, error) {
	p, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Property", err)
	}
	if err := actor.CanAccess(p.AgencyID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DealService) find(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Deal, error) {
	deal, err := s.dealRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Deal", err)
	}
	if err := actor.CanAccess(deal.AgencyID); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *DealService) findModifiable(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Deal, error) {
	deal, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanModify(deal.AgencyID, &deal.AgentID); err != nil {
		return nil, err
	}
	return deal, nil
}
