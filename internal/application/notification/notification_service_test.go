package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/estatehub/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNotification(t *testing.T, userID uuid.UUID) *notification.Notification {
	t.Helper()
	n, err := notification.New(userID, nil, notification.TypeLeadAssigned, "New lead", "Olga Ivanova")
	require.NoError(t, err)
	return n
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	svc := NewNotificationService(repo, zap.NewNop())

	userID := uuid.New()
	leadID := uuid.New()
	repo.On("Save", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.UserID == userID && n.EntityType == "lead" && *n.EntityID == leadID
	})).Return(nil)

	n, err := svc.Notify(ctx, NotifyInput{
		UserID:     userID,
		Type:       notification.TypeLeadAssigned,
		Title:      "New lead",
		EntityType: "lead",
		EntityID:   &leadID,
	})

	require.NoError(t, err)
	assert.False(t, n.IsRead())
	repo.AssertExpectations(t)
}

func TestNotificationService_Notify_Invalid(t *testing.T) {
	repo := new(testutil.MockNotificationRepository)
	svc := NewNotificationService(repo, zap.NewNop())

	_, err := svc.Notify(context.Background(), NotifyInput{UserID: uuid.New(), Type: notification.TypeTaskDue})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNotificationService_ListMine(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	svc := NewNotificationService(repo, zap.NewNop())

	userID := uuid.New()
	filter := shared.NewFilter(1, 2, "", "", "")
	repo.On("FindForUser", ctx, userID, true, filter).Return([]notification.Notification{
		*newNotification(t, userID), *newNotification(t, userID),
	}, nil)
	repo.On("CountForUser", ctx, userID, true).Return(int64(5), nil)

	page, err := svc.ListMine(ctx, userID, true, filter)

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("recipient marks read", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		svc := NewNotificationService(repo, zap.NewNop())
		n := newNotification(t, userID)
		repo.On("FindByID", ctx, n.ID).Return(n, nil)
		repo.On("Save", ctx, n).Return(nil)

		result, err := svc.MarkRead(ctx, userID, n.ID)

		require.NoError(t, err)
		assert.True(t, result.Read)
		assert.NotNil(t, result.ReadAt)
	})

	t.Run("already read is not saved again", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		svc := NewNotificationService(repo, zap.NewNop())
		n := newNotification(t, userID)
		n.MarkRead(n.CreatedAt)
		repo.On("FindByID", ctx, n.ID).Return(n, nil)

		_, err := svc.MarkRead(ctx, userID, n.ID)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("another user's notification is forbidden", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		svc := NewNotificationService(repo, zap.NewNop())
		n := newNotification(t, uuid.New())
		repo.On("FindByID", ctx, n.ID).Return(n, nil)

		_, err := svc.MarkRead(ctx, userID, n.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		svc := NewNotificationService(repo, zap.NewNop())
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.MarkRead(ctx, userID, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestNotificationService_MarkAllRead_UnreadCount(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	svc := NewNotificationService(repo, zap.NewNop())
	userID := uuid.New()

	repo.On("MarkAllRead", ctx, userID, mock.AnythingOfType("time.Time")).Return(int64(3), nil)
	repo.On("CountForUser", ctx, userID, true).Return(int64(0), nil).Once()

	changed, err := svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	unread, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	repo.On("CountForUser", ctx, userID, true).Return(int64(0), errors.New("db down"))
	_, err = svc.UnreadCount(ctx, userID)
	assert.Error(t, err)
}
