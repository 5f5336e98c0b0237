package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/repository"
	"notehub/internal/service"
)

// NoteHandler handles note CRUD and search endpoints.
type NoteHandler struct {
	noteService service.NoteService
}

// NewNoteHandler creates a new note handler.
func NewNoteHandler(noteService service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// CreateNoteRequest represents a note creation request.
type CreateNoteRequest struct {
	Title      string             `json:"title" validate:"required"`
	Content    string             `json:"content"`
	IsFavorite bool               `json:"is_favorite"`
	Images     []model.Attachment `json:"images"`
	Audio      *model.Attachment  `json:"audio"`
}

// UpdateNoteRequest is a partial note patch; omitted fields are untouched.
type UpdateNoteRequest struct {
	Title      *string             `json:"title"`
	Content    *string             `json:"content"`
	IsFavorite *bool               `json:"is_favorite"`
	Images     *[]model.Attachment `json:"images"`
	Audio      *model.Attachment   `json:"audio"`
}

// DeleteNoteResponse reports a completed delete.
type DeleteNoteResponse struct {
	Success bool `json:"success"`
}

// CreateNote godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNoteRequest true "Note fields"
// @Success 201 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes [post]
func (h *NoteHandler) CreateNote(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}

	var req CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	note, err := h.noteService.Create(c.Request().Context(), ident, service.CreateNoteInput{
		Title:      req.Title,
		Content:    req.Content,
		IsFavorite: req.IsFavorite,
		Images:     req.Images,
		Audio:      req.Audio,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, note)
}

// ListNotes godoc
// @Summary List the caller's notes
// @Description With search, results are ranked by relevance; otherwise by recency.
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term over title and content"
// @Param favorites query bool false "Only favorite notes"
// @Success 200 {array} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notes [get]
func (h *NoteHandler) ListNotes(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}

	favorites, _ := strconv.ParseBool(c.QueryParam("favorites"))
	filter := repository.NoteFilter{
		FavoritesOnly: favorites,
		SearchText:    strings.TrimSpace(c.QueryParam("search")),
	}

	notes, err := h.noteService.List(c.Request().Context(), ident, filter)
	if err != nil {
		return domainError(err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return c.JSON(http.StatusOK, notes)
}

// GetNote godoc
// @Summary Get a note by id
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} model.Note
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [get]
func (h *NoteHandler) GetNote(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID()
	}

	note, err := h.noteService.Get(c.Request().Context(), ident, id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// UpdateNote godoc
// @Summary Update a note (full or partial)
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Param request body UpdateNoteRequest true "Fields to change"
// @Success 200 {object} model.Note
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [put]
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID()
	}

	var req UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	note, err := h.noteService.Update(c.Request().Context(), ident, id, service.UpdateNoteInput{
		Title:      req.Title,
		Content:    req.Content,
		IsFavorite: req.IsFavorite,
		Images:     req.Images,
		Audio:      req.Audio,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNote godoc
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Note ID"
// @Success 200 {object} DeleteNoteResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	ident, err := auth.FromContext(c)
	if err != nil {
		return domainError(err)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID()
	}

	if err := h.noteService.Delete(c.Request().Context(), ident, id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, DeleteNoteResponse{Success: true})
}

// domainError maps a service error onto the standard error response.
func domainError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidID() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid id",
		Code:  "INVALID_ID",
	})
}

// bindError distinguishes a malformed images field, which the validation
// taxonomy calls out separately, from a generally unreadable body.
func bindError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(he.Internal, &typeErr) && strings.HasPrefix(typeErr.Field, "images") {
			return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
				Error: "images must be an array of attachments",
				Code:  apperrors.CodeInvalidShape,
			})
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}
