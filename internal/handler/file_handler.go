package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/service"
)

// FileHandler handles binary upload and retrieval endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadResponse returns the opaque reference for an uploaded file.
type UploadResponse struct {
	FileID      string `json:"file_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Message     string `json:"message"`
}

// Upload godoc
// @Summary Upload a binary object
// @Description Accepts multipart form field "file"; 5MiB ceiling and image/audio MIME allow-list.
// @Tags files
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "no file provided",
			Code:  "NO_FILE",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_REQUEST",
		})
	}
	defer src.Close()

	// Read one byte past the ceiling so oversized uploads are rejected
	// without buffering the whole body.
	data, err := io.ReadAll(io.LimitReader(src, service.MaxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_REQUEST",
		})
	}

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	file, err := h.fileService.Upload(c.Request().Context(), ident, fileHeader.Filename, contentType, data)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		FileID:      file.ID.String(),
		Name:        file.Name,
		ContentType: file.ContentType,
		Size:        file.Size,
		Message:     "file uploaded successfully",
	})
}

// GetFile godoc
// @Summary Retrieve an uploaded file
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param fileId path string true "File ID"
// @Success 200 {file} binary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /files/{fileId} [get]
func (h *FileHandler) GetFile(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}
	id, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		return invalidID()
	}

	file, err := h.fileService.Fetch(c.Request().Context(), ident, id)
	if err != nil {
		return domainError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
