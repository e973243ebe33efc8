package handler

import (
	"time"

	"github.com/estatehub/backend/internal/application/crm"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=5000"`
	Priority    string     `json:"priority" binding:"omitempty,max=10"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	LeadID      *uuid.UUID `json:"lead_id"`
	DealID      *uuid.UUID `json:"deal_id"`
	DueAt       *time.Time `json:"due_at"`
}

// UpdateTaskRequest represents the request body for updating a task
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Priority    *string    `json:"priority" binding:"omitempty,max=10"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	LeadID      *uuid.UUID `json:"lead_id"`
	DealID      *uuid.UUID `json:"deal_id"`
	DueAt       *time.Time `json:"due_at"`
	ClearDueAt  bool       `json:"clear_due_at"`
}

// ChangeTaskStatusRequest moves a task to another status
type ChangeTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListTasksRequest filters the task list. Mine narrows to the caller's tasks.
type ListTasksRequest struct {
	dto.ListRequest
	Status     string `form:"status"`
	AssigneeID string `form:"assignee_id" binding:"omitempty,uuid"`
	LeadID     string `form:"lead_id" binding:"omitempty,uuid"`
	DealID     string `form:"deal_id" binding:"omitempty,uuid"`
	Mine       bool   `form:"mine"`
	Overdue    bool   `form:"overdue"`
}

// TaskResponse is the API view of a task
type TaskResponse struct {
	ID                uuid.UUID  `json:"id"`
	AgencyID          uuid.UUID  `json:"agency_id"`
	AssigneeID        uuid.UUID  `json:"assignee_id"`
	CreatorID         *uuid.UUID `json:"creator_id,omitempty"`
	LeadID            *uuid.UUID `json:"lead_id,omitempty"`
	DealID            *uuid.UUID `json:"deal_id,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	DueAt             *time.Time `json:"due_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Overdue           bool       `json:"overdue"`
	ReminderSentAt    *time.Time `json:"reminder_sent_at,omitempty"`
	OverdueNotifiedAt *time.Time `json:"overdue_notified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (r *ListTasksRequest) filter(actor agency.Actor) (shared.Filter, error) {
	f := r.ToFilter()
	if r.Status != "" {
		f = f.With("status", upper(r.Status))
	}
	ids := map[string]string{
		"assignee_id": r.AssigneeID,
		"lead_id":     r.LeadID,
		"deal_id":     r.DealID,
	}
	if r.Mine {
		ids["assignee_id"] = actor.MemberID.String()
	}
	for key, raw := range ids {
		id, err := parseOptionalUUID(raw)
		if err != nil {
			return f, err
		}
		if id != nil {
			f = f.With(key, *id)
		}
	}
	return f, nil
}

func toTaskResponse(t *crm.TaskResult) TaskResponse {
	return TaskResponse{
		ID:                t.ID,
		AgencyID:          t.AgencyID,
		AssigneeID:        t.AssigneeID,
		CreatorID:         t.CreatorID,
		LeadID:            t.LeadID,
		DealID:            t.DealID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          string(t.Priority),
		Status:            string(t.Status),
		DueAt:             t.DueAt,
		CompletedAt:       t.CompletedAt,
		Overdue:           t.Overdue,
		ReminderSentAt:    t.ReminderSentAt,
		OverdueNotifiedAt: t.OverdueNotifiedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
