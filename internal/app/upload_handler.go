package app

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"communityapp/internal/service"
	"communityapp/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService service.UploadService
}

func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func readFileHeader(fh *multipart.FileHeader) (*util.FileData, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return util.ReadFileFromReader(f, fh.Filename, fh.Header.Get("Content-Type"))
}

// formFiles reads every file under field. A request that is not multipart
// has no files.
func formFiles(c *gin.Context, field string) ([]*util.FileData, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	headers := form.File[field]
	files := make([]*util.FileData, 0, len(headers))
	for _, fh := range headers {
		file, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// UploadSingle stores the file in field "file"
// POST /api/v1/uploads/single
func (h *UploadHandler) UploadSingle(c *gin.Context) {
	var file *util.FileData
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		file, err = readFileHeader(fh)
		if err != nil {
			util.HandleError(c, err)
			return
		}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		util.BadRequest(c, "Invalid multipart form")
		return
	}

	image, err := h.uploadService.Upload(c.Request.Context(), file)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "File uploaded successfully", image)
}

// UploadMultiple stores every file in field "files"
// POST /api/v1/uploads/multiple
func (h *UploadHandler) UploadMultiple(c *gin.Context) {
	files, err := formFiles(c, "files")
	if err != nil {
		util.BadRequest(c, "Invalid multipart form")
		return
	}

	images, err := h.uploadService.UploadAll(c.Request.Context(), files, service.MaxUploadFiles)
	if err != nil {
		util.HandleError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Files uploaded successfully", gin.H{"files": images})
}
