package crm

import (
	"context"
	"time"

	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService handles CRM tasks
type TaskService struct {
	taskRepo crm.TaskRepository
	leadRepo crm.LeadRepository
	dealRepo crm.DealRepository
	scope    memberScope
	logger   *zap.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo crm.TaskRepository,
	leadRepo crm.LeadRepository,
	dealRepo crm.DealRepository,
	memberRepo agency.MemberRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		leadRepo: leadRepo,
		dealRepo: dealRepo,
		scope:    memberScope{memberRepo: memberRepo, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Create creates a task. The assignee defaults to the caller; agents cannot
// assign work to other members.
func (s *TaskService) Create(ctx context.Context, actor agency.Actor, input CreateTaskInput) (*TaskResult, error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	assigneeID, err := s.resolveAssignee(ctx, actor, input.AssigneeID)
	if err != nil {
		return nil, err
	}
	priority := crm.TaskPriority(input.Priority)

	task, err := crm.NewTask(actor.AgencyID, assigneeID, input.Title, priority)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		if err := task.SetDetails(task.Title, input.Description, task.Priority); err != nil {
			return nil, err
		}
	}
	if err := s.checkLinks(ctx, actor, input.LeadID, input.DealID); err != nil {
		return nil, err
	}
	task.Link(input.LeadID, input.DealID)
	task.SetDueAt(input.DueAt)
	task.SetCreator(actor.MemberID)

	if err := s.taskRepo.Save(ctx, task); err != nil {
		s.logger.Error("Failed to create task", zap.Error(err))
		return nil, internalError("Failed to create task", err)
	}
	result := ToTaskResult(task, s.now())
	return &result, nil
}

// Get returns a task of the caller's agency
func (s *TaskService) Get(ctx context.Context, actor agency.Actor, id uuid.UUID) (*TaskResult, error) {
	task, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	result := ToTaskResult(task, s.now())
	return &result, nil
}

// Update changes task fields. A new due date re-arms the reminders.
func (s *TaskService) Update(ctx context.Context, actor agency.Actor, id uuid.UUID, input UpdateTaskInput) (*TaskResult, error) {
	task, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil || input.Description != nil || input.Priority != nil {
		title, description, priority := task.Title, task.Description, task.Priority
		if input.Title != nil {
			title = *input.Title
		}
		if input.Description != nil {
			description = *input.Description
		}
		if input.Priority != nil {
			priority = crm.TaskPriority(*input.Priority)
		}
		if err := task.SetDetails(title, description, priority); err != nil {
			return nil, err
		}
	}
	if input.AssigneeID != nil && *input.AssigneeID != task.AssigneeID {
		assigneeID, err := s.resolveAssignee(ctx, actor, input.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.Reassign(assigneeID)
	}
	if input.LeadID != nil || input.DealID != nil {
		leadID, dealID := task.LeadID, task.DealID
		if input.LeadID != nil {
			leadID = input.LeadID
		}
		if input.DealID != nil {
			dealID = input.DealID
		}
		if err := s.checkLinks(ctx, actor, input.LeadID, input.DealID); err != nil {
			return nil, err
		}
		task.Link(leadID, dealID)
	}
	switch {
	case input.ClearDueAt:
		task.SetDueAt(nil)
	case input.DueAt != nil && (task.DueAt == nil || !task.DueAt.Equal(*input.DueAt)):
		task.SetDueAt(input.DueAt)
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, internalError("Failed to update task", err)
	}
	result := ToTaskResult(task, s.now())
	return &result, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, actor agency.Actor, id uuid.UUID) error {
	task, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return lookupError("Task", err)
	}
	return nil
}

// List lists the agency's tasks. Filter keys: status, assignee_id, lead_id, deal_id;
// overdue=true narrows to open tasks past their deadline.
func (s *TaskService) List(ctx context.Context, actor agency.Actor, filter shared.Filter, overdue bool) (*shared.Paginated[TaskResult], error) {
	if err := actor.RequireAgency(); err != nil {
		return nil, err
	}
	now := s.now()
	if overdue {
		filter = filter.With("overdue_at", now.UTC())
	}
	tasks, err := s.taskRepo.FindAllForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to list tasks", err)
	}
	total, err := s.taskRepo.CountForAgency(ctx, actor.AgencyID, filter)
	if err != nil {
		return nil, internalError("Failed to count tasks", err)
	}
	items := make([]TaskResult, 0, len(tasks))
	for i := range tasks {
		items = append(items, ToTaskResult(&tasks[i], now))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ChangeStatus applies a status transition
func (s *TaskService) ChangeStatus(ctx context.Context, actor agency.Actor, id uuid.UUID, status string) (*TaskResult, error) {
	st, err := crm.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, id, func(t *crm.Task) error { return t.ChangeStatus(st) })
}

// Complete marks the task COMPLETED
func (s *TaskService) Complete(ctx context.Context, actor agency.Actor, id uuid.UUID) (*TaskResult, error) {
	return s.apply(ctx, actor, id, (*crm.Task).Complete)
}

func (s *TaskService) apply(ctx context.Context, actor agency.Actor, id uuid.UUID, fn func(*crm.Task) error) (*TaskResult, error) {
	task, err := s.findModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := fn(task); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, internalError("Failed to update task", err)
	}
	result := ToTaskResult(task, s.now())
	return &result, nil
}

func (s *TaskService) resolveAssignee(ctx context.Context, actor agency.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == actor.MemberID {
		return actor.MemberID, nil
	}
	if !actor.IsManager() {
		return uuid.Nil, shared.NewForbiddenError("Agents can only assign tasks to themselves")
	}
	m, err := s.scope.member(ctx, actor, *requested)
	if err != nil {
		return uuid.Nil, err
	}
	return m.ID, nil
}

func (s *TaskService) checkLinks(ctx context.Context, actor agency.Actor, leadID, dealID *uuid.UUID) error {
	if leadID != nil {
		lead, err := s.leadRepo.FindByID(ctx, *leadID)
		if err != nil {
			return lookupError("Lead", err)
		}
		if err := actor.CanAccess(lead.AgencyID); err != nil {
			return err
		}
	}
	if dealID != nil {
		deal, err := s.dealRepo.FindByID(ctx, *dealID)
		if err != nil {
			return lookupError("Deal", err)
		}
		if err := actor.CanAccess(deal.AgencyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) find(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Task", err)
	}
	if err := actor.CanAccess(task.AgencyID); err != nil {
		return nil, err
	}
	return task, nil
}

// findModifiable lets agents change tasks assigned to them or created by them
func (s *TaskService) findModifiable(ctx context.Context, actor agency.Actor, id uuid.UUID) (*crm.Task, error) {
	task, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if task.CreatorID != nil && *task.CreatorID == actor.MemberID {
		return task, nil
	}
	if err := actor.CanModify(task.AgencyID, &task.AssigneeID); err != nil {
		return nil, err
	}
	return task, nil
}
