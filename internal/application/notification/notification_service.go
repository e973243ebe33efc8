// Package notification lists and marks in-app notifications and runs the task notifier pass.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService handles a user's notification inbox
type NotificationService struct {
	repo   notification.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo notification.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger, now: time.Now}
}

// Notify persists a notification for a user
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*notification.Notification, error) {
	n, err := notification.New(input.UserID, input.AgencyID, input.Type, input.Title, input.Body)
	if err != nil {
		return nil, err
	}
	if input.EntityID != nil {
		n.About(input.EntityType, *input.EntityID)
	}
	if err := s.repo.Save(ctx, n); err != nil {
		s.logger.Error("Failed to save notification",
			zap.String("user_id", input.UserID.String()),
			zap.String("type", string(input.Type)),
			zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to save notification", err)
	}
	return n, nil
}

// ListMine lists the user's notifications newest first
func (s *NotificationService) ListMine(ctx context.Context, userID uuid.UUID, unreadOnly bool, filter shared.Filter) (*shared.Paginated[NotificationResult], error) {
	list, err := s.repo.FindForUser(ctx, userID, unreadOnly, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to list notifications", err)
	}
	total, err := s.repo.CountForUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count notifications", err)
	}

	items := make([]NotificationResult, 0, len(list))
	for i := range list {
		items = append(items, ToNotificationResult(&list[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// MarkRead marks one notification read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResult, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Notification")
		}
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load notification", err)
	}
	if err := n.EnsureRecipient(userID); err != nil {
		return nil, err
	}

	if !n.IsRead() {
		n.MarkRead(s.now())
		if err := s.repo.Save(ctx, n); err != nil {
			return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to mark notification read", err)
		}
	}
	result := ToNotificationResult(n)
	return &result, nil
}

// MarkAllRead marks every unread notification of the user and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, shared.WrapDomainError("INTERNAL_ERROR", "Failed to mark notifications read", err)
	}
	return n, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.CountForUser(ctx, userID, true)
	if err != nil {
		return 0, shared.WrapDomainError("INTERNAL_ERROR", "Failed to count notifications", err)
	}
	return n, nil
}
