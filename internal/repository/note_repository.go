package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notehub/internal/model"
)

// NoteFilter narrows a listing to favorites and/or a search term.
type NoteFilter struct {
	FavoritesOnly bool
	SearchText    string
}

// NoteRepository defines note persistence operations.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error)
	FindByOwner(ctx context.Context, ownerID uint, filter NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note.
func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// FindByID finds a note by ID.
func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// FindByOwner lists notes scoped to an owner. With a search term the result
// is ranked by fulltext relevance, title matches weighted above content-only
// matches; otherwise most-recently-updated first, ties broken by creation time.
func (r *noteRepository) FindByOwner(ctx context.Context, ownerID uint, filter NoteFilter) ([]model.Note, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}
	if filter.SearchText != "" {
		q = q.Where("MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)", filter.SearchText)
		q = q.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "MATCH(title) AGAINST (? IN NATURAL LANGUAGE MODE) DESC, MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE) DESC",
			Vars:               []interface{}{filter.SearchText, filter.SearchText},
			WithoutParentheses: true,
		}})
	} else {
		q = q.Order("updated_at DESC").Order("created_at DESC")
	}

	var notes []model.Note
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// Update persists all fields of a note and stamps updated_at. The merge of
// partial fields into the note happens in the service layer, which also never
// lets callers touch id or owner_id.
func (r *noteRepository) Update(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// Delete removes a note. Returns true when a record existed and was removed.
func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
