package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepo_ReadFlow(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com", UserTypeUser)
	other := createTestUser(t, db, "other@example.com", UserTypeUser)

	first := &Notification{UserID: owner.ID, NewsletterID: "n1", Message: "first"}
	second := &Notification{UserID: owner.ID, NewsletterID: "n2", Message: "second"}
	require.NoError(t, repo.CreateNotification(ctx, first))
	require.NoError(t, repo.CreateNotification(ctx, second))

	list, err := repo.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message, "newest first")
	assert.False(t, list[0].IsRead)

	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, first.ID, other.ID), ErrNotFound)
	require.NoError(t, repo.MarkNotificationRead(ctx, first.ID, owner.ID))

	updated, err := repo.MarkAllNotificationsRead(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	list, err = repo.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	for _, n := range list {
		assert.True(t, n.IsRead)
	}
}
