package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"communityapp/internal/logger"
	"communityapp/internal/model"
	"communityapp/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxPostImages   = 6
	MaxUploadFiles  = 10
	MaxUploadSizeMB = 10
)

// FileStorage persists one uploaded file and describes where it lives.
type FileStorage interface {
	Store(ctx context.Context, file *util.FileData) (model.ImageFile, error)
}

// LocalStorage writes files under dir and serves them from baseURL/uploads.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Store(ctx context.Context, file *util.FileData) (model.ImageFile, error) {
	if err := ctx.Err(); err != nil {
		return model.ImageFile{}, err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := os.WriteFile(filepath.Join(s.dir, name), file.Data, 0o644); err != nil {
		return model.ImageFile{}, fmt.Errorf("write upload %s: %w", name, err)
	}

	url := s.baseURL + "/uploads/" + name
	return model.ImageFile{
		Filename:   name,
		URL:        url,
		PreviewURL: url,
		Size:       int64(len(file.Data)),
		Mimetype:   file.MimeType,
	}, nil
}

// CloudinaryStorage uploads to Cloudinary and keeps its resized preview URL.
type CloudinaryStorage struct {
	client *util.CloudinaryClient
}

func NewCloudinaryStorage(client *util.CloudinaryClient) *CloudinaryStorage {
	return &CloudinaryStorage{client: client}
}

func (s *CloudinaryStorage) Store(ctx context.Context, file *util.FileData) (model.ImageFile, error) {
	url, preview, err := s.client.UploadImage(ctx, file)
	if err != nil {
		return model.ImageFile{}, err
	}
	return model.ImageFile{
		Filename:   lastSegment(url),
		URL:        url,
		PreviewURL: preview,
		Size:       int64(len(file.Data)),
		Mimetype:   file.MimeType,
	}, nil
}

type UploadService interface {
	Upload(ctx context.Context, file *util.FileData) (*model.ImageFile, error)
	UploadAll(ctx context.Context, files []*util.FileData, max int) (model.ImageList, error)
	ImagesFromURLs(urls []string) model.ImageList
}

type uploadService struct {
	storage FileStorage
	baseURL string
}

func NewUploadService(storage FileStorage, baseURL string) UploadService {
	return &uploadService{
		storage: storage,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *uploadService) Upload(ctx context.Context, file *util.FileData) (*model.ImageFile, error) {
	if file == nil {
		return nil, model.NewValidationError("No file uploaded")
	}
	if err := checkSize(file); err != nil {
		return nil, err
	}

	img, err := s.storage.Store(ctx, file)
	if err != nil {
		logger.Error("file upload failed", zap.String("filename", file.Filename), zap.Error(err))
		return nil, model.NewInternalError(err)
	}
	return &img, nil
}

// UploadAll stores files concurrently. The first failure fails the batch and
// results keep the input order.
func (s *uploadService) UploadAll(ctx context.Context, files []*util.FileData, max int) (model.ImageList, error) {
	if len(files) == 0 {
		return nil, model.NewValidationError("No files uploaded")
	}
	if max > 0 && len(files) > max {
		return nil, model.NewValidationError(fmt.Sprintf("At most %d files are allowed", max))
	}
	for _, f := range files {
		if err := checkSize(f); err != nil {
			return nil, err
		}
	}

	images := make(model.ImageList, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			img, err := s.storage.Store(gctx, f)
			if err != nil {
				return fmt.Errorf("store %s: %w", f.Filename, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("batch upload failed", zap.Int("files", len(files)), zap.Error(err))
		return nil, model.NewInternalError(err)
	}
	return images, nil
}

// ImagesFromURLs describes already hosted images. Relative paths are
// resolved against the public base URL.
func (s *uploadService) ImagesFromURLs(urls []string) model.ImageList {
	images := make(model.ImageList, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		full := raw
		if strings.HasPrefix(raw, "/") {
			full = s.baseURL + raw
		}
		images = append(images, model.ImageFile{
			Filename:   lastSegment(raw),
			URL:        full,
			PreviewURL: full,
			Size:       0,
			Mimetype:   "image/jpeg",
		})
	}
	return images
}

func checkSize(file *util.FileData) error {
	if len(file.Data) > MaxUploadSizeMB<<20 {
		return model.NewValidationError(fmt.Sprintf("File %s exceeds %dMB", file.Filename, MaxUploadSizeMB))
	}
	return nil
}

func lastSegment(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
