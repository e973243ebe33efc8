// Package crm implements the agency CRM: leads, deals, commissions and tasks.
package crm

import (
	"context"
	"errors"
	"strings"

	notificationapp "github.com/estatehub/backend/internal/application/notification"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier persists in-app notifications
type Notifier interface {
	Notify(ctx context.Context, input notificationapp.NotifyInput) (*notification.Notification, error)
}

// memberScope resolves memberships inside the caller's agency and notifies members
type memberScope struct {
	memberRepo agency.MemberRepository
	notifier   Notifier
	logger     *zap.Logger
}

// member loads an active member of the actor's agency
func (s memberScope) member(ctx context.Context, actor agency.Actor, id uuid.UUID) (*agency.Member, error) {
	m, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Member")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load member", err)
	}
	if m.AgencyID != actor.AgencyID {
		return nil, shared.NewForbiddenError("Member belongs to another agency")
	}
	if !m.Active {
		return nil, shared.NewValidationError("Member is not active")
	}
	return m, nil
}

// notify sends an in-app notification to a member. Failures are logged only.
func (s memberScope) notify(ctx context.Context, member *agency.Member, typ notification.Type, title, body, entityType string, entityID uuid.UUID) {
	if s.notifier == nil || member == nil {
		return
	}
	agencyID := member.AgencyID
	_, err := s.notifier.Notify(ctx, notificationapp.NotifyInput{
		UserID:     member.UserID,
		AgencyID:   &agencyID,
		Type:       typ,
		Title:      title,
		Body:       body,
		EntityType: entityType,
		EntityID:   &entityID,
	})
	if err != nil {
		s.logger.Warn("Failed to notify member",
			zap.String("member_id", member.ID.String()),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}

// notifyMemberID is notify for a member that still has to be loaded
func (s memberScope) notifyMemberID(ctx context.Context, memberID uuid.UUID, typ notification.Type, title, body, entityType string, entityID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		s.logger.Warn("Failed to load member for notification",
			zap.String("member_id", memberID.String()),
			zap.Error(err))
		return
	}
	s.notify(ctx, m, typ, title, body, entityType, entityID)
}

func internalError(message string, err error) error {
	return shared.WrapDomainError("INTERNAL_ERROR", message, err)
}

func lookupError(resource string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return internalError("Failed to load "+strings.ToLower(resource), err)
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
