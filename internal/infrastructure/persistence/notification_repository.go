package persistence

import (
	"context"
	"time"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// FindForUser lists a user's notifications newest first
func (r *GormNotificationRepository) FindForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]notification.Notification, error) {
	var list []notification.Notification
	query := r.forUser(ctx, userID, unreadOnly).Order("created_at DESC")
	if err := paginate(query, filter).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountForUser counts a user's notifications
func (r *GormNotificationRepository) CountForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	var count int64
	if err := r.forUser(ctx, userID, unreadOnly).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAllRead stamps every unread notification of the user and returns how many changed
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Updates(map[string]any{"read_at": at.UTC(), "updated_at": at.UTC()})
	return result.RowsAffected, result.Error
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *GormNotificationRepository) forUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&notification.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	return query
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
