package persistence

import (
	"context"
	"time"

	"github.com/estatehub/backend/internal/domain/crm"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var openTaskStatuses = []crm.TaskStatus{crm.TaskStatusPending, crm.TaskStatusInProgress}

// GormTaskRepository implements crm.TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Task, error) {
	var task crm.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// FindAllForAgency lists an agency's tasks
func (r *GormTaskRepository) FindAllForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) ([]crm.Task, error) {
	var tasks []crm.Task
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Task{}).Where("agency_id = ?", agencyID), filter)
	query = paginate(query.Order(orderClause(filter.OrderBy, filter.OrderDir, TaskSortFields, "created_at")), filter)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountForAgency counts an agency's tasks matching the filter
func (r *GormTaskRepository) CountForAgency(ctx context.Context, agencyID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Task{}).Where("agency_id = ?", agencyID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDueForReminder returns open tasks due in [from, to] with no reminder sent, across all agencies
func (r *GormTaskRepository) FindDueForReminder(ctx context.Context, from, to time.Time, limit int) ([]crm.Task, error) {
	var tasks []crm.Task
	query := r.db.WithContext(ctx).
		Where("status IN ?", openTaskStatuses).
		Where("due_at >= ? AND due_at <= ?", from.UTC(), to.UTC()).
		Where("reminder_sent_at IS NULL").
		Order("due_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindOverdueUnnotified returns open tasks past due with no overdue notice, across all agencies
func (r *GormTaskRepository) FindOverdueUnnotified(ctx context.Context, now time.Time, limit int) ([]crm.Task, error) {
	var tasks []crm.Task
	query := r.db.WithContext(ctx).
		Where("status IN ?", openTaskStatuses).
		Where("due_at < ?", now.UTC()).
		Where("overdue_notified_at IS NULL").
		Order("due_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *crm.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&crm.Task{}, "id = ?", id))
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "title", "description")
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "assignee_id":
			query = query.Where("assignee_id = ?", value)
		case "lead_id":
			query = query.Where("lead_id = ?", value)
		case "deal_id":
			query = query.Where("deal_id = ?", value)
		case "overdue_at":
			// value is the reference time
			query = query.Where("status IN ? AND due_at < ?", openTaskStatuses, value)
		}
	}
	return query
}

var _ crm.TaskRepository = (*GormTaskRepository)(nil)
