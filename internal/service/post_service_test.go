package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"communityapp/internal/model"
	"communityapp/internal/repository"
	"communityapp/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{}

func (failingStorage) Store(context.Context, *util.FileData) (model.ImageFile, error) {
	return model.ImageFile{}, errors.New("disk full")
}

func newLocalUploads(t *testing.T) (UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:5000")
	require.NoError(t, err)
	return NewUploadService(storage, "http://localhost:5000/"), dir
}

func TestUploadService_ImagesFromURLs(t *testing.T) {
	uploads, _ := newLocalUploads(t)

	images := uploads.ImagesFromURLs([]string{"/uploads/a.png", "https://cdn.example.com/x/b.jpg", ""})
	require.Len(t, images, 2)
	assert.Equal(t, model.ImageFile{
		Filename:   "a.png",
		URL:        "http://localhost:5000/uploads/a.png",
		PreviewURL: "http://localhost:5000/uploads/a.png",
		Size:       0,
		Mimetype:   "image/jpeg",
	}, images[0])
	assert.Equal(t, "https://cdn.example.com/x/b.jpg", images[1].URL)
	assert.Equal(t, "b.jpg", images[1].Filename)
}

func TestUploadService_LocalBatchKeepsOrder(t *testing.T) {
	uploads, dir := newLocalUploads(t)
	ctx := context.Background()

	files := []*util.FileData{
		{Data: []byte("one"), Filename: "one.PNG", MimeType: "image/png"},
		{Data: []byte("three!"), Filename: "three.jpg", MimeType: "image/jpeg"},
	}
	images, err := uploads.UploadAll(ctx, files, MaxPostImages)
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, int64(3), images[0].Size)
	assert.Equal(t, "image/png", images[0].Mimetype)
	assert.Equal(t, ".png", filepath.Ext(images[0].Filename))
	assert.Equal(t, "http://localhost:5000/uploads/"+images[1].Filename, images[1].URL)

	stored, err := os.ReadFile(filepath.Join(dir, images[1].Filename))
	require.NoError(t, err)
	assert.Equal(t, "three!", string(stored))
}

func TestUploadService_Limits(t *testing.T) {
	uploads, _ := newLocalUploads(t)
	ctx := context.Background()

	_, err := uploads.UploadAll(ctx, nil, MaxUploadFiles)
	requireKind(t, err, model.KindValidation)
	assert.Equal(t, "No files uploaded", err.Error())

	files := make([]*util.FileData, MaxPostImages+1)
	for i := range files {
		files[i] = &util.FileData{Data: []byte("x"), Filename: "x.jpg"}
	}
	_, err = uploads.UploadAll(ctx, files, MaxPostImages)
	requireKind(t, err, model.KindValidation)

	_, err = uploads.Upload(ctx, nil)
	requireKind(t, err, model.KindValidation)
	assert.Equal(t, "No file uploaded", err.Error())

	_, err = uploads.Upload(ctx, &util.FileData{Data: make([]byte, MaxUploadSizeMB<<20+1), Filename: "big.jpg"})
	requireKind(t, err, model.KindValidation)
}

func TestUploadService_BatchFailsAsAWhole(t *testing.T) {
	uploads := NewUploadService(failingStorage{}, "http://localhost:5000")

	_, err := uploads.UploadAll(context.Background(), []*util.FileData{
		{Data: []byte("a"), Filename: "a.jpg"},
		{Data: []byte("b"), Filename: "b.jpg"},
	}, MaxUploadFiles)
	requireKind(t, err, model.KindInternal)
}

func TestPostService_CreateGetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	uploads, _ := newLocalUploads(t)
	svc := NewPostService(env.posts, env.favs, uploads)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")

	_, err := svc.CreatePost(ctx, a.ID, CreatePostRequest{Title: "", Content: "c"}, nil)
	requireKind(t, err, model.KindValidation)
	_, err = svc.CreatePost(ctx, a.ID, CreatePostRequest{Title: "t", Content: "c", Category: "八卦"}, nil)
	requireKind(t, err, model.KindValidation)

	post, err := svc.CreatePost(ctx, a.ID, CreatePostRequest{Title: "hello", Content: "world", Images: []string{"/uploads/a.jpg"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPostCategory, post.Category)
	require.Len(t, post.Images, 1)
	assert.Equal(t, "http://localhost:5000/uploads/a.jpg", post.Images[0].URL)
	require.NotNil(t, post.Author)

	_, err = env.favs.Create(ctx, b.ID, post.ID)
	require.NoError(t, err)

	got, err := svc.GetPostByID(ctx, post.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.True(t, got.IsFavorite)

	got, err = svc.GetPostByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
	assert.False(t, got.IsFavorite)

	title := "changed"
	_, err = svc.UpdatePost(ctx, b.ID, post.ID, UpdatePostRequest{Title: &title}, nil)
	requireKind(t, err, model.KindForbidden)
	assert.Equal(t, "Not authorized to update this post", err.Error())

	updated, err := svc.UpdatePost(ctx, a.ID, post.ID, UpdatePostRequest{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)
	assert.Equal(t, "world", updated.Content)
	assert.Len(t, updated.Images, 1)
	assert.Equal(t, 2, updated.Views)

	cleared, err := svc.UpdatePost(ctx, a.ID, post.ID, UpdatePostRequest{Images: []string{}}, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Images)

	err = svc.DeletePost(ctx, b.ID, post.ID)
	requireKind(t, err, model.KindForbidden)
	require.NoError(t, svc.DeletePost(ctx, a.ID, post.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Favorite{}))

	_, err = svc.GetPostByID(ctx, post.ID, 0)
	requireKind(t, err, model.KindNotFound)
	assert.Equal(t, "Post not found", err.Error())
}

func TestPostService_ListMarksFavorites(t *testing.T) {
	env := newTestEnv(t)
	uploads, _ := newLocalUploads(t)
	svc := NewPostService(env.posts, env.favs, uploads)
	ctx := context.Background()

	a := env.user(t, "alice")
	p1 := env.post(t, a.ID)
	env.post(t, a.ID)
	_, err := env.favs.Create(ctx, a.ID, p1.ID)
	require.NoError(t, err)

	posts, total, err := svc.ListPosts(ctx, a.ID, "", util.NewPage(1, 10, 10, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, p := range posts {
		assert.Equal(t, p.ID == p1.ID, p.IsFavorite)
	}

	mine, total, err := svc.ListUserPosts(ctx, a.ID, util.NewPage(1, 10, 10, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	assert.Len(t, svc.Categories(), len(model.PostCategories))
	assert.Equal(t, CategoryOption{Label: "生活分享", Value: "生活分享"}, svc.Categories()[0])
}

func TestProductService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	uploads, _ := newLocalUploads(t)
	svc := NewProductService(env.products, uploads)
	ctx := context.Background()

	a := env.user(t, "alice")
	b := env.user(t, "bob")

	_, err := svc.CreateProduct(ctx, a.ID, CreateProductRequest{Title: "bike", Description: "d", Price: 0}, nil)
	requireKind(t, err, model.KindValidation)
	_, err = svc.CreateProduct(ctx, a.ID, CreateProductRequest{Title: "bike", Description: "d", Price: 5, Status: "旧"}, nil)
	requireKind(t, err, model.KindValidation)

	product, err := svc.CreateProduct(ctx, a.ID, CreateProductRequest{Title: "bike", Description: "d", Price: 99.5}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProductCategory, product.Category)
	assert.Equal(t, model.DefaultProductStatus, product.Status)

	got, err := svc.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	sold := true
	_, err = svc.UpdateProduct(ctx, b.ID, product.ID, UpdateProductRequest{IsSold: &sold}, nil)
	requireKind(t, err, model.KindForbidden)
	assert.Equal(t, "无权限更新此商品", err.Error())

	updated, err := svc.UpdateProduct(ctx, a.ID, product.ID, UpdateProductRequest{IsSold: &sold}, nil)
	require.NoError(t, err)
	assert.True(t, updated.IsSold)
	assert.Equal(t, 99.5, updated.Price)

	list, total, err := svc.ListProducts(ctx, repository.ProductFilter{IsSold: &sold}, util.NewPage(1, 10, 10, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	requireKind(t, svc.DeleteProduct(ctx, b.ID, product.ID), model.KindForbidden)
	require.NoError(t, svc.DeleteProduct(ctx, a.ID, product.ID))
	_, err = svc.GetProductByID(ctx, product.ID)
	requireKind(t, err, model.KindNotFound)
	assert.Equal(t, "二手商品不存在", err.Error())
}

func TestFavoriteService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFavoriteService(env.favs, env.posts)
	ctx := context.Background()

	a := env.user(t, "alice")
	post := env.post(t, a.ID)

	_, err := svc.Add(ctx, a.ID, post.ID+10)
	requireKind(t, err, model.KindNotFound)
	assert.Equal(t, "帖子不存在", err.Error())

	_, err = svc.Add(ctx, a.ID, post.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, a.ID, post.ID)
	requireKind(t, err, model.KindConflict)
	assert.Equal(t, "已经收藏过该帖子", err.Error())

	posts, err := svc.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].IsFavorite)

	require.NoError(t, svc.Remove(ctx, a.ID, post.ID))
	err = svc.Remove(ctx, a.ID, post.ID)
	requireKind(t, err, model.KindNotFound)
	assert.Equal(t, "未收藏该帖子", err.Error())
}
