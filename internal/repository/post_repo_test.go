package repository

import (
	"context"
	"testing"

	"communityapp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_ImagesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	images := model.ImageList{
		{Filename: "a.jpg", URL: "http://x/uploads/a.jpg", PreviewURL: "http://x/uploads/a.jpg", Size: 10, Mimetype: "image/jpeg"},
		{Filename: "b.png", URL: "http://x/uploads/b.png", PreviewURL: "http://x/uploads/b.png", Size: 0, Mimetype: "image/png"},
	}
	post := &model.Post{Title: "t", Content: "c", AuthorID: author.ID, Images: images, Category: "求助"}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, images, got.Images)
	assert.Equal(t, "求助", got.Category)
	require.NotNil(t, got.Author)
	assert.Equal(t, "author", got.Author.Username)
}

func TestPostRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	createPost(t, db, a.ID, "one")
	createPost(t, db, b.ID, "two")
	require.NoError(t, repo.Create(ctx, &model.Post{Title: "three", Content: "c", AuthorID: a.ID, Category: "活动"}))

	all, total, err := repo.List(ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "three", all[0].Title)

	events, total, err := repo.List(ctx, PostFilter{Category: "活动"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)

	mine, total, err := repo.List(ctx, PostFilter{AuthorID: a.ID}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, mine, 1)
	assert.Equal(t, "one", mine[0].Title)
}

func TestPostRepository_UpdateLeavesCounters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	post := createPost(t, db, a.ID, "before")
	require.NoError(t, db.Model(post).UpdateColumns(map[string]interface{}{"likes_count": 4, "views": 9}).Error)

	stale := &model.Post{ID: post.ID, Title: "after", Content: "new", Category: "其他"}
	require.NoError(t, repo.Update(ctx, stale))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, 4, got.LikesCount)
	assert.Equal(t, 9, got.Views)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	likes := NewLikeRepository(db)
	favorites := NewFavoriteRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	b := createUser(t, db, "bob")
	post := createPost(t, db, a.ID, "doomed")
	keep := createPost(t, db, a.ID, "keep")
	top := createComment(t, db, b.ID, post.ID, nil)
	createComment(t, db, a.ID, post.ID, &top.ID)
	createComment(t, db, a.ID, keep.ID, nil)

	_, err := likes.Create(ctx, b.ID, post.ID, model.TargetTypePost)
	require.NoError(t, err)
	_, err = likes.Create(ctx, a.ID, top.ID, model.TargetTypeComment)
	require.NoError(t, err)
	_, err = favorites.Create(ctx, b.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(1), countRows(t, db, &model.Comment{}))
	assert.Equal(t, int64(0), countRows(t, db, &model.Like{}))
	assert.Equal(t, int64(0), countRows(t, db, &model.Favorite{}))

	assert.ErrorIs(t, repo.Delete(ctx, post.ID), gorm.ErrRecordNotFound)
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	post := createPost(t, db, a.ID, "p")

	require.NoError(t, repo.IncrementViews(ctx, post.ID))
	require.NoError(t, repo.IncrementViews(ctx, post.ID))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestProductRepository_FiltersAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "alice")
	sold := true
	require.NoError(t, repo.Create(ctx, &model.Product{Title: "bike", Description: "d", Price: 10, AuthorID: a.ID, Category: "运动户外", Status: "全新"}))
	require.NoError(t, repo.Create(ctx, &model.Product{Title: "book", Description: "d", Price: 1.5, AuthorID: a.ID, Category: "书籍音像", Status: "九成新", IsSold: true}))

	list, total, err := repo.List(ctx, ProductFilter{IsSold: &sold}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "book", list[0].Title)

	list, total, err = repo.List(ctx, ProductFilter{Category: "运动户外", AuthorID: a.ID}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	productID := list[0].ID

	require.NoError(t, db.Create(&model.Comment{Content: "still available?", AuthorID: a.ID, ProductID: &productID}).Error)

	require.NoError(t, repo.Delete(ctx, productID))
	assert.Equal(t, int64(0), countRows(t, db, &model.Comment{}))
	assert.Equal(t, int64(1), countRows(t, db, &model.Product{}))
}
