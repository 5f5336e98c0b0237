package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/service"
)

// TranscribeHandler handles the stubbed speech-to-text endpoints.
type TranscribeHandler struct {
	transcriptions service.TranscriptionService
}

// NewTranscribeHandler creates a new transcription handler.
func NewTranscribeHandler(transcriptions service.TranscriptionService) *TranscribeHandler {
	return &TranscribeHandler{transcriptions: transcriptions}
}

// TranscribeResponse acknowledges an accepted transcription upload.
type TranscribeResponse struct {
	NoteID  string `json:"note_id"`
	Message string `json:"message"`
}

// TranscriptionStatusResponse reports the polled transcription state.
type TranscriptionStatusResponse struct {
	Status model.TranscriptionStatus `json:"status"`
	Text   string                    `json:"text,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// Submit godoc
// @Summary Submit audio for transcription
// @Description Creates a note with a pending transcription; an external service would complete it.
// @Tags transcribe
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Audio file"
// @Param title formData string false "Note title"
// @Success 200 {object} TranscribeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transcribe [post]
func (h *TranscribeHandler) Submit(c echo.Context) error {
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

	data, err := io.ReadAll(io.LimitReader(src, service.MaxTranscriptionBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "unreadable file",
			Code:  "INVALID_REQUEST",
		})
	}

	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	note, err := h.transcriptions.Submit(c.Request().Context(), ident, c.FormValue("title"), fileHeader.Filename, contentType, data)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, TranscribeResponse{
		NoteID:  note.ID.String(),
		Message: "audio uploaded, transcription in progress",
	})
}

// Status godoc
// @Summary Poll transcription status
// @Tags transcribe
// @Produce json
// @Security BearerAuth
// @Param noteId query string true "Note ID returned by submit"
// @Success 200 {object} TranscriptionStatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transcribe [get]
func (h *TranscribeHandler) Status(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}

	noteID, err := uuid.Parse(c.QueryParam("noteId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "noteId is required",
			Code:  "INVALID_ID",
		})
	}

	status, err := h.transcriptions.Status(c.Request().Context(), ident, noteID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, TranscriptionStatusResponse{
		Status: status.Status,
		Text:   status.Text,
		Error:  status.Error,
	})
}
