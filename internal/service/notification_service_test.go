package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

func TestNotificationServiceInbox(t *testing.T) {
	db := newMemDB()
	svc := NewNotificationService(memNotifications{db}, zap.NewNop())
	ctx := context.Background()
	for _, msg := range []string{"first", "second"} {
		require.NoError(t, memNotifications{db}.Create(ctx, nil, &models.Notification{UserID: "u-1", Message: msg}))
	}
	require.NoError(t, memNotifications{db}.Create(ctx, nil, &models.Notification{UserID: "u-2", Message: "other"}))

	inbox, err := svc.List(ctx, "u-1", false, 0)
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 2)
	assert.Equal(t, 2, inbox.UnreadCount)

	require.NoError(t, svc.MarkRead(ctx, "u-1", inbox.Items[0].ID))
	count, err := svc.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = svc.MarkRead(ctx, "u-2", inbox.Items[1].ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	unread, err := svc.List(ctx, "u-1", true, 0)
	require.NoError(t, err)
	require.Len(t, unread.Items, 1)
	assert.Equal(t, "second", unread.Items[0].Message)

	updated, err := svc.MarkAllRead(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	count, err = svc.UnreadCount(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
