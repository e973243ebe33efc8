package notification

import (
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a notification
type Type string

const (
	TypeTaskDue          Type = "TASK_DUE"
	TypeTaskOverdue      Type = "TASK_OVERDUE"
	TypeLeadAssigned     Type = "LEAD_ASSIGNED"
	TypeDealStageChanged Type = "DEAL_STAGE_CHANGED"
	TypeCommissionStatus Type = "COMMISSION_STATUS"
)

// IsValid reports whether the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeTaskDue, TypeTaskOverdue, TypeLeadAssigned, TypeDealStageChanged, TypeCommissionStatus:
		return true
	}
	return false
}

// Channel is an outbound delivery channel
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
)

// Notification is an in-app message addressed to a user
type Notification struct {
	shared.BaseEntity
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	AgencyID       *uuid.UUID `gorm:"type:uuid;index"`
	Type           Type       `gorm:"type:varchar(30);not null"`
	Title          string     `gorm:"type:varchar(200);not null"`
	Body           string     `gorm:"type:text"`
	EntityType     string     `gorm:"type:varchar(30)"`
	EntityID       *uuid.UUID `gorm:"type:uuid"`
	ReadAt         *time.Time `gorm:"index"`
	EmailedAt      *time.Time
	TelegramSentAt *time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification
func New(userID uuid.UUID, agencyID *uuid.UUID, typ Type, title, body string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("Notification requires a recipient")
	}
	if !typ.IsValid() {
		return nil, shared.NewValidationError("Invalid notification type")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Notification title cannot be empty")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		AgencyID:   agencyID,
		Type:       typ,
		Title:      title,
		Body:       strings.TrimSpace(body),
	}, nil
}

// About links the notification to the record it describes
func (n *Notification) About(entityType string, entityID uuid.UUID) *Notification {
	n.EntityType = entityType
	n.EntityID = &entityID
	return n
}

// IsRead reports whether the recipient has seen it
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead stamps ReadAt once
func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt != nil {
		return
	}
	at = at.UTC()
	n.ReadAt = &at
	n.Touch()
}

// MarkDelivered stamps the per-channel delivery time
func (n *Notification) MarkDelivered(ch Channel, at time.Time) {
	at = at.UTC()
	switch ch {
	case ChannelEmail:
		n.EmailedAt = &at
	case ChannelTelegram:
		n.TelegramSentAt = &at
	}
	n.Touch()
}

// EnsureRecipient fails with FORBIDDEN when userID is not the recipient
func (n *Notification) EnsureRecipient(userID uuid.UUID) error {
	if n.UserID != userID {
		return shared.NewForbiddenError("Notification belongs to another user")
	}
	return nil
}
