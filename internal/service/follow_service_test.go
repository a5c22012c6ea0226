package service

import (
	"context"
	"testing"

	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// untouchableFollowRepo fails the test if storage is reached.
type untouchableFollowRepo struct {
	repository.FollowRepository
	t *testing.T
}

func (r untouchableFollowRepo) Create(context.Context, uint, uint) (*model.Follow, error) {
	r.t.Fatal("storage reached")
	return nil, nil
}

func (r untouchableFollowRepo) Exists(context.Context, uint, uint) (bool, error) {
	r.t.Fatal("storage reached")
	return false, nil
}

type untouchableUserRepo struct {
	repository.UserRepository
	t *testing.T
}

func (r untouchableUserRepo) Exists(context.Context, uint) (bool, error) {
	r.t.Fatal("storage reached")
	return false, nil
}

func TestFollowService_SelfFollowNeverReachesStorage(t *testing.T) {
	svc := NewFollowService(untouchableFollowRepo{t: t}, untouchableUserRepo{t: t}, nil)

	_, err := svc.Follow(context.Background(), 7, 7)
	requireKind(t, err, model.KindValidation)
	assert.Equal(t, "You cannot follow yourself", err.Error())
}

func TestFollowService_FollowTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.follows, env.users, env.notifier)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")

	_, err := svc.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.reload(t, a.ID).FollowingCount)
	assert.Equal(t, 1, env.reload(t, b.ID).FollowersCount)

	_, err = svc.Follow(ctx, a.ID, b.ID)
	requireKind(t, err, model.KindConflict)
	assert.Equal(t, "Already following", err.Error())

	assert.Equal(t, 1, env.reload(t, a.ID).FollowingCount)
	assert.Equal(t, 1, env.reload(t, b.ID).FollowersCount)
	assert.Equal(t, int64(1), env.count(t, &model.Follow{}))
}

func TestFollowService_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.follows, env.users, nil)

	a := env.user(t, "alice")
	_, err := svc.Follow(context.Background(), a.ID, a.ID+100)
	requireKind(t, err, model.KindNotFound)

	_, err = svc.Follow(context.Background(), a.ID, 0)
	requireKind(t, err, model.KindValidation)
}

func TestFollowService_UnfollowMissingEdge(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.follows, env.users, nil)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")

	err := svc.Unfollow(ctx, a.ID, b.ID)
	requireKind(t, err, model.KindNotFound)
	assert.Equal(t, "Follow record not found", err.Error())
	assert.Equal(t, 0, env.reload(t, a.ID).FollowingCount)
	assert.Equal(t, 0, env.reload(t, b.ID).FollowersCount)

	_, err = svc.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unfollow(ctx, a.ID, b.ID))
	requireKind(t, svc.Unfollow(ctx, a.ID, b.ID), model.KindNotFound)

	assert.Equal(t, 0, env.reload(t, a.ID).FollowingCount)
	assert.Equal(t, 0, env.reload(t, b.ID).FollowersCount)
}

func TestFollowService_NotifiesFollowedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.follows, env.users, env.notifier)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")

	_, err := svc.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	events := env.hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, b.ID, events[0].userID)
	assert.Equal(t, EventNotification, events[0].eventType)

	msg, ok := events[0].payload.(NotificationMessage)
	require.True(t, ok)
	assert.Equal(t, model.NotificationTypeNewFollower, msg.Type)
	assert.Equal(t, "alice started following you", msg.Message)
}

func TestFollowService_ListsAndCheck(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.follows, env.users, nil)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")
	c := env.user(t, "carol")

	_, err := svc.Follow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, c.ID, a.ID)
	require.NoError(t, err)

	followers, total, err := svc.Followers(ctx, a.ID, util.NewPage(1, 1, 10, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, followers, 1)
	assert.Equal(t, "carol", followers[0].Username)

	following, total, err := svc.Following(ctx, b.ID, util.NewPage(1, 10, 10, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, following[0].ID)

	ok, err := svc.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
