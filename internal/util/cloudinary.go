package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"communityapp/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const previewTransformation = "c_limit,w_400,q_auto"

type CloudinaryClient struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if !cfg.CloudinaryConfigured() {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryClient{cld: cld, folder: cfg.CloudinaryFolder}, nil
}

// UploadImage uploads one file and returns its delivery URL and a resized
// preview URL.
func (c *CloudinaryClient) UploadImage(ctx context.Context, file *FileData) (string, string, error) {
	data := file.Data
	if compressed, err := CompressImage(file.Data, file.Filename); err == nil {
		data = compressed
	}

	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	url := result.SecureURL
	preview := strings.Replace(url, "/upload/", "/upload/"+previewTransformation+"/", 1)
	return url, preview, nil
}

// CompressImage re-encodes JPEG and PNG input as quality-80 JPEG. Other
// formats are returned as an error so the caller keeps the original bytes.
func CompressImage(data []byte, filename string) ([]byte, error) {
	var (
		img image.Image
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("error encoding compressed image: %w", err)
	}
	return buf.Bytes(), nil
}

// FileData represents file data in memory
type FileData struct {
	Data     []byte
	Filename string
	MimeType string
}

// ReadFileFromReader reads file data from an io.Reader. An explicit mime
// type wins over the one guessed from the extension.
func ReadFileFromReader(reader io.Reader, filename, mimeType string) (*FileData, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MimeTypeFromName(filename)
	}

	return &FileData{
		Data:     data,
		Filename: filename,
		MimeType: mimeType,
	}, nil
}

func MimeTypeFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	}
	return "image/jpeg"
}
