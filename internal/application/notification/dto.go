package notification

import (
	"time"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotifyInput describes an in-app notification to persist
type NotifyInput struct {
	UserID     uuid.UUID
	AgencyID   *uuid.UUID
	Type       notification.Type
	Title      string
	Body       string
	EntityType string
	EntityID   *uuid.UUID
}

// NotificationResult is the public view of a notification
type NotificationResult struct {
	ID         uuid.UUID
	AgencyID   *uuid.UUID
	Type       notification.Type
	Title      string
	Body       string
	EntityType string
	EntityID   *uuid.UUID
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// ToNotificationResult converts a notification to its public view
func ToNotificationResult(n *notification.Notification) NotificationResult {
	return NotificationResult{
		ID:         n.ID,
		AgencyID:   n.AgencyID,
		Type:       n.Type,
		Title:      n.Title,
		Body:       n.Body,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Read:       n.IsRead(),
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}
