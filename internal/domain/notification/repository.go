package notification

import (
	"context"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for notifications
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindForUser lists newest first; unreadOnly hides read notifications
	FindForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, error)
	CountForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	Save(ctx context.Context, n *Notification) error
}
