package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormNotificationRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormNotificationRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	agencyID := uuid.New()
	for i := 0; i < 3; i++ {
		n, err := notification.New(userID, &agencyID, notification.TypeTaskDue, "Task due soon", "Call the buyer")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, n))
	}
	other, err := notification.New(uuid.New(), nil, notification.TypeLeadAssigned, "New lead", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	list, err := repo.FindForUser(ctx, userID, false, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, list, 3)

	first := list[0]
	first.MarkRead(time.Now())
	require.NoError(t, repo.Save(ctx, &first))

	unread, err := repo.CountForUser(ctx, userID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	changed, err := repo.MarkAllRead(ctx, userID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	unread, err = repo.CountForUser(ctx, userID, true)
	require.NoError(t, err)
	assert.Zero(t, unread)

	total, err := repo.CountForUser(ctx, other.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
