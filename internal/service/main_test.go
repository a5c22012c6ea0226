package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"communityapp/internal/model"
	"communityapp/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type pushed struct {
	userID    uint
	eventType string
	payload   interface{}
}

// recordingHub captures realtime pushes.
type recordingHub struct {
	mu     sync.Mutex
	events []pushed
}

func (h *recordingHub) SendToUser(userID uint, eventType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, pushed{userID: userID, eventType: eventType, payload: payload})
}

func (h *recordingHub) Events() []pushed {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]pushed(nil), h.events...)
}

type fakePublisher struct {
	err    error
	bodies [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, _, _ string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	users    repository.UserRepository
	follows  repository.FollowRepository
	likes    repository.LikeRepository
	posts    repository.PostRepository
	products repository.ProductRepository
	comments repository.CommentRepository
	favs     repository.FavoriteRepository
	messages repository.MessageRepository
	notifs   repository.NotificationRepository
	hub      *recordingHub
	notifier NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))

	env := &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		follows:  repository.NewFollowRepository(db),
		likes:    repository.NewLikeRepository(db),
		posts:    repository.NewPostRepository(db),
		products: repository.NewProductRepository(db),
		comments: repository.NewCommentRepository(db, nil),
		favs:     repository.NewFavoriteRepository(db),
		messages: repository.NewMessageRepository(db),
		notifs:   repository.NewNotificationRepository(db, nil),
		hub:      &recordingHub{},
	}
	env.notifier = NewNotificationService(env.notifs, nil)
	env.notifier.SetRealtime(env.hub)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
		Avatar:   model.DefaultAvatar,
		Role:     model.RoleUser,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) post(t *testing.T, authorID uint) *model.Post {
	t.Helper()
	p := &model.Post{Title: "post", Content: "content", AuthorID: authorID, Category: model.DefaultPostCategory}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) product(t *testing.T, authorID uint) *model.Product {
	t.Helper()
	p := &model.Product{Title: "bike", Description: "d", Price: 10, AuthorID: authorID,
		Category: model.DefaultProductCategory, Status: model.DefaultProductStatus}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) reload(t *testing.T, id uint) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, e.db.First(&u, id).Error)
	return &u
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func requireKind(t *testing.T, err error, kind model.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, model.KindOf(err), "unexpected error: %v", err)
}
