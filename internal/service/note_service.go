package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/repository"
)

const noteCacheTTL = 5 * time.Minute

// NoteCache is the slice of the cache client the note side depends on.
// *cache.Client implements it.
type NoteCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string) error
}

func noteCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("note:%s", id.String())
}

// CreateNoteInput carries the caller-supplied fields for a new note. The
// owner is always the resolved identity, never part of the input.
type CreateNoteInput struct {
	Title      string
	Content    string
	IsFavorite bool
	Images     []model.Attachment
	Audio      *model.Attachment
}

// UpdateNoteInput is a partial patch; nil fields are left untouched.
type UpdateNoteInput struct {
	Title      *string
	Content    *string
	IsFavorite *bool
	Images     *[]model.Attachment
	Audio      *model.Attachment
}

// NoteService orchestrates guard, validation and persistence for notes.
type NoteService interface {
	Create(ctx context.Context, ident *auth.Identity, input CreateNoteInput) (*model.Note, error)
	Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*model.Note, error)
	List(ctx context.Context, ident *auth.Identity, filter repository.NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, ident *auth.Identity, id uuid.UUID, patch UpdateNoteInput) (*model.Note, error)
	Delete(ctx context.Context, ident *auth.Identity, id uuid.UUID) error
}

type noteService struct {
	notes     repository.NoteRepository
	validator *AttachmentValidator
	cache     NoteCache
}

// NewNoteService creates a new note service.
func NewNoteService(notes repository.NoteRepository, validator *AttachmentValidator, cacheClient NoteCache) NoteService {
	return &noteService{
		notes:     notes,
		validator: validator,
		cache:     cacheClient,
	}
}

// Create validates attachments and persists a new note owned by the caller.
func (s *noteService) Create(ctx context.Context, ident *auth.Identity, input CreateNoteInput) (*model.Note, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidShape, "title is required", "")
	}
	if err := s.validator.Validate(input.Images, input.Audio); err != nil {
		return nil, err
	}

	note := &model.Note{
		OwnerID:    ident.UserID,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		IsFavorite: input.IsFavorite,
		Images:     input.Images,
		Audio:      input.Audio,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w: %v", apperrors.ErrStorage, err)
	}
	return note, nil
}

// Get returns a single note. A note owned by somebody else yields Forbidden,
// not NotFound.
func (s *noteService) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*model.Note, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	var cached model.Note
	if s.cache.GetJSON(ctx, noteCacheKey(id), &cached) {
		if err := auth.RequireOwnership(&cached, ident); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	note, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(note, ident); err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, noteCacheKey(id), note, noteCacheTTL)
	return note, nil
}

// List returns the caller's notes, filtered and ordered by the repository.
func (s *noteService) List(ctx context.Context, ident *auth.Identity, filter repository.NoteFilter) ([]model.Note, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	notes, err := s.notes.FindByOwner(ctx, ident.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w: %v", apperrors.ErrStorage, err)
	}
	return notes, nil
}

// Update re-fetches the note, re-checks ownership, re-validates attachments
// when the patch carries them, and applies the merge atomically. Owner and id
// are never patchable.
func (s *noteService) Update(ctx context.Context, ident *auth.Identity, id uuid.UUID, patch UpdateNoteInput) (*model.Note, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	note, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(note, ident); err != nil {
		return nil, err
	}

	if patch.Images != nil || patch.Audio != nil {
		images := note.Images
		if patch.Images != nil {
			images = *patch.Images
		}
		audio := note.Audio
		if patch.Audio != nil {
			audio = patch.Audio
		}
		if err := s.validator.Validate(images, audio); err != nil {
			return nil, err
		}
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidShape, "title is required", "")
		}
		note.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		note.Content = *patch.Content
	}
	if patch.IsFavorite != nil {
		note.IsFavorite = *patch.IsFavorite
	}
	if patch.Images != nil {
		note.Images = *patch.Images
	}
	if patch.Audio != nil {
		note.Audio = patch.Audio
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w: %v", apperrors.ErrStorage, err)
	}
	_ = s.cache.Delete(ctx, noteCacheKey(id))
	return note, nil
}

// Delete re-checks ownership before removal. Deleting an already-deleted id
// reports NotFound; the operation is deliberately not idempotent.
func (s *noteService) Delete(ctx context.Context, ident *auth.Identity, id uuid.UUID) error {
	if ident == nil {
		return apperrors.ErrUnauthenticated
	}

	note, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnership(note, ident); err != nil {
		return err
	}

	existed, err := s.notes.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note: %w: %v", apperrors.ErrStorage, err)
	}
	if !existed {
		return apperrors.ErrNoteNotFound
	}
	_ = s.cache.Delete(ctx, noteCacheKey(id))
	return nil
}

func (s *noteService) fetch(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	note, err := s.notes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w: %v", apperrors.ErrStorage, err)
	}
	return note, nil
}
