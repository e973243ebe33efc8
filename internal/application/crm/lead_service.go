package crm

import (
	"context"
	"io"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	csvimport "github.com/estatehub/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxImportErrors = 100
	maxExportRows   = 10000
)

// LeadService handles lead operations
type LeadService struct {
	leadRepo     crm.LeadRepository
	propertyRepo listing.PropertyRepository
	scope        memberScope
	logger       *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo crm.LeadRepository,
	memberRepo agency.MemberRepository,
	propertyRepo listing.PropertyRepository,
	notifier Notifier,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		propertyRepo: propertyRepo,
		scope:        memberScope{memberRepo: memberRepo, notifier: notifier, logger: logger},
		logger:       logger,
	}
}

// Create creates a lead in the caller's agency
func (s *LeadService) Create(ctx context.Context, actor agency.Actor, input CreateLeadInput) (*LeadResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	var source crm.LeadSource
	if input.Source != "" {
		src, err := crm.ParseLeadSource(input.Source)
		if err != nil {
			return nil, err
		}
		source = src
	}

	lead, err := crm.NewLead(actor.AgencyID, input.FullName, input.Email, input.Phone, source)
	if err != nil {
		return nil, err
	}
	if err := lead.SetBudget(input.BudgetMin, input.BudgetMax); err != nil {
		return nil, err
	}
	lead.SetPreferences(input.PreferredDistrict, input.Notes)
	if input.PropertyID != nil {
		if err := s.checkProperty(ctx, actor, *input.PropertyID); err != nil {
			return nil, err
		}
		lead.SetProperty(input.PropertyID)
	}

	var assignee *agency.Member
	if input.AssignedToID != nil {
		assignee, err = s.scope.member(ctx, actor, *input.AssignedToID)
		if err != nil {
			return nil, err
		}
		lead.AssignTo(&assignee.ID)
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		s.logger.Error("Failed to create lead", zap.Error(err))
		return nil, internalError("Failed to create lead", err)
	}
	if assignee != nil && assignee.ID != actor.MemberID {
		s.notifyAssigned(ctx, assignee, lead)
	}

	result := ToLeadResult(lead)
	return &result, nil
}

// Get returns a lead of the caller's agency
func (s *LeadService) Get(ctx context.Context, actor agency.Actor, id uuid.UUID) (*LeadResult, error) {
	lead, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	result := ToLeadResult(lead)
	return &result, nil
}

// Update changes lead fields. Agents may only edit leads assigned to them or unassigned.
func (s *LeadService) Update(ctx context.Context, actor agency.Actor, id uuid.UUID, input UpdateLeadInput) (*LeadResult, error) {
	lead, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if err := lead.SetName(*input.FullName); err != nil {
			return nil, err
		}
	}
	if input.Email != nil || input.Phone != nil {
		email, phone := lead.Email, lead.Phone
		if input.Email != nil {
			email = *input.Email
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		if err := lead.SetContact(email, phone); err != nil {
			return nil, err
		}
	}
	if input.Source != nil {
		src, err := crm.ParseLeadSource(*input.Source)
		if err != nil {
			return nil, err
		}
		if err := lead.SetSource(src); err != nil {
			return nil, err
		}
	}
	if input.BudgetMin != nil || input.BudgetMax != nil {
		min, max := lead.BudgetMin, lead.BudgetMax
		if input.BudgetMin != nil {
			min = input.BudgetMin
		}
		if input.BudgetMax != nil {
			max = input.BudgetMax
		}
		if err := lead.SetBudget(min, max); err != nil {
			return nil, err
		}
	}
	if input.PreferredDistrict != nil || input.Notes != nil {
		district, notes := lead.PreferredDistrict, lead.Notes
		if input.PreferredDistrict != nil {
			district = *input.PreferredDistrict
		}
		if input.Notes != nil {
			notes = *input.Notes
		}
		lead.SetPreferences(district, notes)
	}
	switch {
	case input.ClearProperty:
		lead.SetProperty(nil)
	case input.PropertyID != nil:
		if err := s.checkProperty(ctx, actor, *input.PropertyID); err != nil {
			return nil, err
		}
		lead.SetProperty(input.PropertyID)
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, internalError("Failed to update lead", err)
	}
	result := ToLeadResult(lead)
	return &result, nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, actor agency.Actor, id uuid.UUID) error {
	lead, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.leadRepo.Delete(ctx, lead.ID); err != nil {
		return lookupError("Lead", err)
	}
	s.logger.Info("Lead deleted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("member_id", actor.MemberID.String()))
	return nil
}

// List lists the agency's leads. Filter keys: status, source, assigned_to_id, unassigned, property_id.
func (s *LeadService) List(ctx context.Context, actor agency.Actor, filter shared.Filter) (*shared.Paginated[LeadResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to list leads", err)
	}
	total, err := s.leadRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to count leads", err)
	}
	page := shared.NewPaginated(toResults(leads, ToLeadResult), total, filter.Page, filter.PageSize)
	return &page, nil
}

// ChangeStatus moves the lead through the funnel
func (s *LeadService) ChangeStatus(ctx context.Context, actor agency.Actor, id uuid.UUID, status string) (*LeadResult, error) {
	st, err := crm.ParseLeadStatus(status)
	if err != nil {
		return nil, err
	}
	lead, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := lead.ChangeStatus(st); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, internalError("Failed to update lead", err)
	}
	result := ToLeadResult(lead)
	return &result, nil
}

// Assign hands the lead to a member of the same agency, nil unassigns.
// The new assignee receives a LEAD_ASSIGNED notification.
func (s *LeadService) Assign(ctx context.Context, actor agency.Actor, id uuid.UUID, memberID *uuid.UUID) (*LeadResult, error) {
	lead, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var assignee *agency.Member
	if memberID != nil {
		assignee, err = s.scope.member(ctx, actor, *memberID)
		if err != nil {
			return nil, err
		}
		if !actor.IsManager() && assignee.ID != actor.MemberID {
			return nil, shared.NewForbiddenError("Agents can only assign leads to themselves")
		}
	}

	unchanged := (lead.AssignedToID == nil && memberID == nil) ||
		(lead.AssignedToID != nil && memberID != nil && *lead.AssignedToID == *memberID)
	if unchanged {
		result := ToLeadResult(lead)
		return &result, nil
	}

	if assignee != nil {
		lead.AssignTo(&assignee.ID)
	} else {
		lead.AssignTo(nil)
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, internalError("Failed to assign lead", err)
	}
	if assignee != nil && assignee.ID != actor.MemberID {
		s.notifyAssigned(ctx, assignee, lead)
	}

	result := ToLeadResult(lead)
	return &result, nil
}

// ImportCSV creates leads from a CSV file. Valid rows are saved, invalid rows are reported.
func (s *LeadService) ImportCSV(ctx context.Context, actor agency.Actor, r io.Reader) (*ImportResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}

	decoded, err := csvimport.DecodeLeads(r, actor.AgencyID, maxImportErrors)
	if err != nil {
		// file-level problems: encoding, empty file, missing header or columns
		return nil, shared.WrapDomainError(shared.ErrInvalidCSV.Code, err.Error(), err)
	}

	if len(decoded.Leads) > 0 {
		if err := s.leadRepo.SaveBatch(ctx, decoded.Leads); err != nil {
			s.logger.Error("Failed to save imported leads",
				zap.Int("rows", len(decoded.Leads)),
				zap.Error(err))
			return nil, internalError("Failed to save imported leads", err)
		}
	}

	s.logger.Info("Leads imported",
		zap.String("agency_id", actor.AgencyID.String()),
		zap.Int("total", decoded.TotalRows),
		zap.Int("created", len(decoded.Leads)),
		zap.Int("failed", decoded.Failed))

	return &ImportResult{
		TotalRows: decoded.TotalRows,
		Created:   len(decoded.Leads),
		Failed:    decoded.Failed,
		Errors:    decoded.Errors.Errors(),
		Truncated: decoded.Errors.IsTruncated(),
	}, nil
}

// ExportCSV writes the agency's leads matching filter as CSV. Pagination in the
// filter is ignored; the export walks every page up to maxExportRows.
func (s *LeadService) ExportCSV(ctx context.Context, actor agency.Actor, w io.Writer, filter shared.Filter) (int, error) {
	if err := actor.RequireAgency(); err != nil {
		return 0, err
	}

	filter.PageSize = shared.MaxPageSize
	var all []crm.Lead
	for page := 1; len(all) < maxExportRows; page++ {
		filter.Page = page
		batch, err := s.leadRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
		if err != nil {
			return 0, internalError("Failed to export leads", err)
		}
		all = append(all, batch...)
		if len(batch) < filter.PageSize {
			break
		}
	}
	if len(all) > maxExportRows {
		all = all[:maxExportRows]
	}

	if err := csvimport.EncodeLeads(w, all); err != nil {
		return 0, internalError("Failed to write CSV", err)
	}
	return len(all), nil
}

func (s *LeadService) notifyAssigned(ctx context.Context, assignee *agency.Member, lead *crm.Lead) {
	body := lead.FullName
	if lead.Phone != "" {
		body += ", " + lead.Phone
	} else if lead.Email != "" {
		body += ", " + lead.Email
	}
	s.scope.notify(ctx, assignee, notification.TypeLeadAssigned, "New lead assigned: "+lead.FullName, body, "lead", lead.ID)
}

func (s *LeadService) checkProperty(ctx context.Context, actor agency.Actor, propertyID uuid.UUID) error {
	p, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return lookupError("Property", err)
	}
	return actor.CanAccess(p.AgencyID)
}

func (s *LeadService) find(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Lead", err)
	}
	if err := actor.CanAccess(lead.AgencyID); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *LeadService) findModifiable(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Lead, error) {
	lead, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanModify(lead.AgencyID, lead.AssignedToID); err != nil {
		return nil, err
	}
	return lead, nil
}
