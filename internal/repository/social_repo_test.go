package repository

import (
	"context"
	"testing"

	"communityapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFavoriteRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	p1 := createPost(t, db, a.ID, "one")
	p2 := createPost(t, db, a.ID, "two")
	p3 := createPost(t, db, a.ID, "three")

	_, err := repo.Create(ctx, a.ID, p1.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, a.ID, p2.ID)
	require.NoError(t, err)

	_, err = repo.Create(ctx, a.ID, p1.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	posts, err := repo.ListPosts(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, p2.ID, posts[0].ID)
	assert.True(t, posts[0].IsFavorite)
	require.NotNil(t, posts[0].Author)

	marks, err := repo.FavoritedPostIDs(ctx, a.ID, []uint{p1.ID, p3.ID})
	require.NoError(t, err)
	assert.True(t, marks[p1.ID])
	assert.False(t, marks[p3.ID])

	require.NoError(t, repo.Delete(ctx, a.ID, p1.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID, p1.ID), gorm.ErrRecordNotFound)
}

func TestMessageRepository_Conversations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	c := createUser(t, db, "carol")

	send := func(from, to *model.User, content string) *model.Message {
		msg := &model.Message{SenderID: from.ID, ReceiverID: to.ID, Content: content}
		require.NoError(t, repo.Create(ctx, msg))
		return msg
	}

	send(b, a, "hi alice")
	send(a, b, "hi bob")
	send(b, a, "how are you")
	last := send(c, a, "hey")

	require.NotNil(t, last.Sender)
	assert.Equal(t, "carol", last.Sender.Username)

	unread, err := repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	convs, err := repo.ListConversations(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, c.ID, convs[0].User.ID)
	assert.Equal(t, int64(1), convs[0].UnreadCount)
	assert.Equal(t, b.ID, convs[1].User.ID)
	assert.Equal(t, "how are you", convs[1].LastMessage.Content)
	assert.Equal(t, int64(2), convs[1].UnreadCount)

	history, err := repo.GetConversation(ctx, a.ID, b.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "hi alice", history[0].Content)

	require.NoError(t, repo.MarkConversationRead(ctx, a.ID, b.ID))
	unread, err = repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestBannerRepository_CacheAside(t *testing.T) {
	db := setupTestDB(t)
	rc, mr := setupTestRedis(t)
	repo := NewBannerRepository(db, rc)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "second", ImageURL: "b.png", Order: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "first", ImageURL: "a.png", Order: 1, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Banner{Title: "hidden", ImageURL: "c.png", Order: 0, IsActive: false}))

	banners, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, "first", banners[0].Title)
	assert.True(t, mr.Exists(activeBannersCacheKey))

	// A direct write bypassing the repository is not visible until invalidation.
	require.NoError(t, db.Model(&model.Banner{}).Where("title = ?", "hidden").Update("is_active", true).Error)
	banners, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, banners, 2)

	require.NoError(t, repo.Delete(ctx, banners[1].ID))
	assert.False(t, mr.Exists(activeBannersCacheKey))

	banners, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, "hidden", banners[0].Title)
}

func TestAnnouncementRepository_ActiveNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnnouncementRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Announcement{Title: "old", Content: "c", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Announcement{Title: "new", Content: "c", IsActive: true}))
	require.NoError(t, repo.Create(ctx, &model.Announcement{Title: "off", Content: "c", IsActive: false}))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Title)

	assert.ErrorIs(t, repo.Delete(ctx, 999), gorm.ErrRecordNotFound)
}

func TestNotificationRepository_UnreadCount(t *testing.T) {
	db := setupTestDB(t)
	rc, _ := setupTestRedis(t)
	repo := NewNotificationRepository(db, rc)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	n1 := &model.Notification{UserID: a.ID, Type: model.NotificationTypeNewFollower, Title: "New follower"}
	require.NoError(t, repo.Create(ctx, n1))
	require.NoError(t, repo.Create(ctx, &model.Notification{UserID: a.ID, Type: model.NotificationTypePostLiked, Title: "Liked"}))

	count, err := repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.MarkAsRead(ctx, n1.ID, a.ID))
	count, err = repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, repo.MarkAsRead(ctx, n1.ID, a.ID+1), gorm.ErrRecordNotFound)

	require.NoError(t, repo.MarkAllAsRead(ctx, a.ID))
	count, err = repo.CountUnread(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	list, err := repo.FindByUserID(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
