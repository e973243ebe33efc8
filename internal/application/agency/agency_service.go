// Package agency manages agencies (the tenants) and their role-scoped memberships.
package agency

import (
	"context"
	"errors"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/identity"
	"github.com/estatehub/backend/internal/domain/listing"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgencyService handles agency and membership operations
type AgencyService struct {
	agencyRepo agency.AgencyRepository
	memberRepo agency.MemberRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewAgencyService creates a new agency service
func NewAgencyService(
	agencyRepo agency.AgencyRepository,
	memberRepo agency.MemberRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *AgencyService {
	return &AgencyService{
		agencyRepo: agencyRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// CreateAgency creates an agency and makes the caller its OWNER
func (s *AgencyService) CreateAgency(ctx context.Context, userID uuid.UUID, input CreateAgencyInput) (*AgencyResult, error) {
	slug := input.Slug
	if slug == "" {
		slug = listing.Slugify(input.Name)
	}
	a, err := agency.NewAgency(input.Name, slug)
	if err != nil {
		return nil, err
	}
	a.SetContact(input.Email, input.Phone, input.Address)

	exists, err := s.agencyRepo.ExistsBySlug(ctx, a.Slug)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to check agency slug", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Agency slug is already taken")
	}

	owner, err := agency.NewMember(a.ID, userID, agency.RoleOwner, input.OwnerTitle)
	if err != nil {
		return nil, err
	}
	if err := s.agencyRepo.CreateWithOwner(ctx, a, owner); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Agency slug is already taken")
		}
		s.logger.Error("Failed to create agency", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create agency", err)
	}

	s.logger.Info("Agency created",
		zap.String("agency_id", a.ID.String()),
		zap.String("owner_user_id", userID.String()))

	result := ToAgencyResult(a)
	ownerResult := ToMemberResult(owner, nil)
	result.Owner = &ownerResult
	return &result, nil
}

// GetAgency returns the caller's agency
func (s *AgencyService) GetAgency(ctx context.Context, actor agency.Actor) (*AgencyResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	a, err := s.findAgency(ctx, actor.AgencyID)
	if err != nil {
		return nil, err
	}
	result := ToAgencyResult(a)
	return &result, nil
}

// UpdateAgency changes name and contact details. Managers only.
func (s *AgencyService) UpdateAgency(ctx context.Context, actor agency.Actor, input UpdateAgencyInput) (*AgencyResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	a, err := s.findAgency(ctx, actor.AgencyID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := a.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	email, phone, address := a.Email, a.Phone, a.Address
	if input.Email != nil {
		email = *input.Email
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if input.Address != nil {
		address = *input.Address
	}
	a.SetContact(email, phone, address)

	if err := s.agencyRepo.Save(ctx, a); err != nil {
		s.logger.Error("Failed to update agency", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to update agency", err)
	}
	result := ToAgencyResult(a)
	return &result, nil
}

// ListMembers lists the caller's agency members with their user details
func (s *AgencyService) ListMembers(ctx context.Context, actor agency.Actor, filter shared.Filter) (*shared.Paginated[MemberResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to list members", err)
	}
	total, err := s.memberRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count members", err)
	}

	userIDs := make([]uuid.UUID, 0, len(members))
	for i := range members {
		userIDs = append(userIDs, members[i].UserID)
	}
	users := map[uuid.UUID]*identity.User{}
	if len(userIDs) > 0 {
		found, err := s.userRepo.FindByIDs(ctx, userIDs)
		if err != nil {
			return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load member users", err)
		}
		for i := range found {
			users[found[i].ID] = &found[i]
		}
	}

	items := make([]MemberResult, 0, len(members))
	for i := range members {
		items = append(items, ToMemberResult(&members[i], users[members[i].UserID]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// AddMember adds an existing user to the caller's agency. Managers only;
// only an OWNER may add another OWNER.
func (s *AgencyService) AddMember(ctx context.Context, actor agency.Actor, input AddMemberInput) (*MemberResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	role, err := agency.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if role == agency.RoleOwner && actor.Role != agency.RoleOwner {
		return nil, shared.NewForbiddenError("Only owners can add another owner")
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load user", err)
	}

	if _, err := s.memberRepo.FindByAgencyAndUser(ctx, actor.AgencyID, user.ID); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User is already a member of this agency")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to check membership", err)
	}

	member, err := agency.NewMember(actor.AgencyID, user.ID, role, input.Title)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "User is already a member of this agency")
		}
		s.logger.Error("Failed to add member", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to add member", err)
	}

	s.logger.Info("Member added",
		zap.String("agency_id", actor.AgencyID.String()),
		zap.String("member_id", member.ID.String()),
		zap.String("role", string(role)))

	result := ToMemberResult(member, user)
	return &result, nil
}

// UpdateMember changes role, title or active flag. The last OWNER cannot be demoted or deactivated.
func (s *AgencyService) UpdateMember(ctx context.Context, actor agency.Actor, memberID uuid.UUID, input UpdateMemberInput) (*MemberResult, error) {
	if err := actor.RequireManager(); err != nil {
		return nil, err
	}
	member, err := s.findMember(ctx, actor, memberID)
	if err != nil {
		return nil, err
	}
	if member.IsOwner() && actor.Role != agency.RoleOwner {
		return nil, shared.NewForbiddenError("Only owners can change another owner")
	}

	activeOwner := member.IsActiveOwner()
	losesOwnership := false
	if input.Role != nil {
		role, err := agency.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		if role == agency.RoleOwner && actor.Role != agency.RoleOwner {
			return nil, shared.NewForbiddenError("Only owners can promote to owner")
		}
		losesOwnership = activeOwner && role != agency.RoleOwner
		if err := member.ChangeRole(role); err != nil {
			return nil, err
		}
	}
	if input.Active != nil && !*input.Active && activeOwner {
		losesOwnership = true
	}
	if losesOwnership {
		if err := s.ensureAnotherOwner(ctx, actor.AgencyID); err != nil {
			return nil, err
		}
	}

	if input.Title != nil {
		member.SetTitle(*input.Title)
	}
	if input.Active != nil {
		member.SetActive(*input.Active)
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		s.logger.Error("Failed to update member", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to update member", err)
	}

	result := ToMemberResult(member, s.lookupUser(ctx, member.UserID))
	return &result, nil
}

// RemoveMember deletes a membership. The last OWNER cannot be removed.
func (s *AgencyService) RemoveMember(ctx context.Context, actor agency.Actor, memberID uuid.UUID) error {
	if err := actor.RequireManager(); err != nil {
		return err
	}
	member, err := s.findMember(ctx, actor, memberID)
	if err != nil {
		return err
	}
	if member.IsOwner() {
		if actor.Role != agency.RoleOwner {
			return shared.NewForbiddenError("Only owners can remove another owner")
		}
		if member.Active {
			if err := s.ensureAnotherOwner(ctx, actor.AgencyID); err != nil {
				return err
			}
		}
	}

	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Member")
		}
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to remove member", err)
	}

	s.logger.Info("Member removed",
		zap.String("agency_id", actor.AgencyID.String()),
		zap.String("member_id", member.ID.String()))
	return nil
}

func (s *AgencyService) ensureAnotherOwner(ctx context.Context, agencyID uuid.UUID) error {
	owners, err := s.memberRepo.CountOwners(ctx, agencyID)
	if err != nil {
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to count owners", err)
	}
	if owners <= 1 {
		return shared.NewInvalidStateError("An agency must keep at least one owner")
	}
	return nil
}

func (s *AgencyService) findAgency(ctx context.Context, id uuid.UUID) (*agency.Agency, error) {
	a, err := s.agencyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Agency")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load agency", err)
	}
	return a, nil
}

func (s *AgencyService) findMember(ctx context.Context, actor agency.Actor, id uuid.UUID) (*agency.Member, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Member")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load member", err)
	}
	if err := actor.CanAccess(m.AgencyID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *AgencyService) lookupUser(ctx context.Context, id uuid.UUID) *identity.User {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load member user", zap.String("user_id", id.String()), zap.Error(err))
		return nil
	}
	return u
}
