package crm

import (
	"strings"
	"time"

	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskStatus is a CRM task's progress
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsValid reports whether the status is known
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the task still needs work
func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// ParseTaskStatus converts user input into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("Invalid task status: " + s)
	}
	return st, nil
}

// TaskPriority orders the work queue
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid reports whether the priority is known
func (p TaskPriority) IsValid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

// Task is a to-do for an agency member, optionally tied to a lead or deal
type Task struct {
	shared.AgencyEntity
	AssigneeID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	CreatorID         *uuid.UUID   `gorm:"type:uuid"`
	LeadID            *uuid.UUID   `gorm:"type:uuid;index"`
	DealID            *uuid.UUID   `gorm:"type:uuid;index"`
	Title             string       `gorm:"type:varchar(200);not null"`
	Description       string       `gorm:"type:text"`
	Priority          TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	Status            TaskStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueAt             *time.Time   `gorm:"index"`
	CompletedAt       *time.Time
	ReminderSentAt    *time.Time
	OverdueNotifiedAt *time.Time
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a PENDING task
func NewTask(agencyID, assigneeID uuid.UUID, title string, priority TaskPriority) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Task title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewValidationError("Task title cannot exceed 200 characters")
	}
	if assigneeID == uuid.Nil {
		return nil, shared.NewValidationError("Task requires an assignee")
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError("Invalid task priority")
	}
	return &Task{
		AgencyEntity: shared.NewAgencyEntity(agencyID),
		AssigneeID:   assigneeID,
		Title:        title,
		Priority:     priority,
		Status:       TaskStatusPending,
	}, nil
}

// SetDetails updates title, description and priority
func (t *Task) SetDetails(title, description string, priority TaskPriority) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewValidationError("Task title cannot be empty")
	}
	if !priority.IsValid() {
		return shared.NewValidationError("Invalid task priority")
	}
	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.Priority = priority
	t.Touch()
	return nil
}

// SetDueAt changes the deadline and re-arms both reminders
func (t *Task) SetDueAt(dueAt *time.Time) {
	if dueAt != nil {
		utc := dueAt.UTC()
		dueAt = &utc
	}
	t.DueAt = dueAt
	t.ReminderSentAt = nil
	t.OverdueNotifiedAt = nil
	t.Touch()
}

// SetCreator records the member who created the task
func (t *Task) SetCreator(memberID uuid.UUID) {
	t.CreatorID = &memberID
}

// Reassign hands the task to another member
func (t *Task) Reassign(memberID uuid.UUID) {
	t.AssigneeID = memberID
	t.Touch()
}

// Link attaches the task to a lead and/or deal
func (t *Task) Link(leadID, dealID *uuid.UUID) {
	t.LeadID = leadID
	t.DealID = dealID
	t.Touch()
}

// ChangeStatus applies a status transition.
// Completing stamps CompletedAt, reopening clears it, cancelled tasks cannot be completed.
func (t *Task) ChangeStatus(status TaskStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Invalid task status")
	}
	if t.Status == status {
		return nil
	}
	if t.Status == TaskStatusCancelled && status == TaskStatusCompleted {
		return shared.NewInvalidStateError("A cancelled task cannot be completed")
	}

	switch status {
	case TaskStatusCompleted:
		now := time.Now().UTC()
		t.CompletedAt = &now
	default:
		t.CompletedAt = nil
	}
	t.Status = status
	t.Touch()
	return nil
}

// Complete is ChangeStatus(COMPLETED)
func (t *Task) Complete() error {
	return t.ChangeStatus(TaskStatusCompleted)
}

// IsOverdue reports whether an open task is past its deadline
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status.IsOpen() && t.DueAt != nil && t.DueAt.Before(now)
}

// IsDueWithin reports whether an open task falls due in [now, now+window]
func (t *Task) IsDueWithin(now time.Time, window time.Duration) bool {
	if !t.Status.IsOpen() || t.DueAt == nil {
		return false
	}
	return !t.DueAt.Before(now) && !t.DueAt.After(now.Add(window))
}

// MarkReminderSent records that the due-soon reminder went out
func (t *Task) MarkReminderSent(at time.Time) {
	at = at.UTC()
	t.ReminderSentAt = &at
}

// MarkOverdueNotified records that the overdue notice went out
func (t *Task) MarkOverdueNotified(at time.Time) {
	at = at.UTC()
	t.OverdueNotifiedAt = &at
}
