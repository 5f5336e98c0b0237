package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/repository"
)

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepository) FindByOwner(ctx context.Context, ownerID uint, filter repository.NoteFilter) ([]model.Note, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// fakeNoteCache is an in-memory stand-in for the redis wrapper.
type fakeNoteCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeNoteCache() *fakeNoteCache {
	return &fakeNoteCache{entries: map[string][]byte{}}
}

func (f *fakeNoteCache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (f *fakeNoteCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = payload
}

func (f *fakeNoteCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeNoteCache) contains(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

func newNoteService(repo *MockNoteRepository) NoteService {
	return NewNoteService(repo, NewAttachmentValidator(), newFakeNoteCache())
}

func ident(userID uint) *auth.Identity {
	return &auth.Identity{UserID: userID, Email: "user@example.com"}
}

func ownedNote(id uuid.UUID, owner uint) *model.Note {
	return &model.Note{
		ID:      id,
		OwnerID: owner,
		Title:   "Groceries",
		Content: "milk eggs bread",
	}
}

func TestNoteService_Create(t *testing.T) {
	t.Run("owner is always the caller", func(t *testing.T) {
		repo := new(MockNoteRepository)
		var created *model.Note
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*model.Note) }).
			Return(nil)

		svc := newNoteService(repo)
		note, err := svc.Create(context.Background(), ident(42), CreateNoteInput{
			Title:   "  Groceries  ",
			Content: "milk eggs bread",
		})

		require.NoError(t, err)
		assert.Equal(t, uint(42), created.OwnerID)
		assert.Equal(t, "Groceries", note.Title)
		repo.AssertExpectations(t)
	})

	t.Run("blank title rejected before storage", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := newNoteService(repo)

		_, err := svc.Create(context.Background(), ident(1), CreateNoteInput{Title: "   "})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid attachments rejected before storage", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := newNoteService(repo)

		_, err := svc.Create(context.Background(), ident(1), CreateNoteInput{
			Title:  "With image",
			Images: []model.Attachment{{Name: "x.png"}},
		})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, apperrors.CodeInvalidImage, vErr.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("nil identity short-circuits", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := newNoteService(repo)

		_, err := svc.Create(context.Background(), nil, CreateNoteInput{Title: "x"})

		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestNoteService_Get(t *testing.T) {
	noteID := uuid.New()

	t.Run("owner reads own note", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)

		svc := newNoteService(repo)
		note, err := svc.Get(context.Background(), ident(1), noteID)

		require.NoError(t, err)
		assert.Equal(t, noteID, note.ID)
	})

	t.Run("owner mismatch is forbidden, not NotFound", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)

		svc := newNoteService(repo)
		_, err := svc.Get(context.Background(), ident(2), noteID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("missing note", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(nil, gorm.ErrRecordNotFound)

		svc := newNoteService(repo)
		_, err := svc.Get(context.Background(), ident(1), noteID)

		assert.ErrorIs(t, err, apperrors.ErrNoteNotFound)
	})
}

func TestNoteService_List(t *testing.T) {
	repo := new(MockNoteRepository)
	filter := repository.NoteFilter{FavoritesOnly: true, SearchText: "milk"}
	repo.On("FindByOwner", mock.Anything, uint(7), filter).
		Return([]model.Note{*ownedNote(uuid.New(), 7)}, nil)

	svc := newNoteService(repo)
	notes, err := svc.List(context.Background(), ident(7), filter)

	require.NoError(t, err)
	assert.Len(t, notes, 1)
	repo.AssertExpectations(t)
}

func TestNoteService_Update(t *testing.T) {
	noteID := uuid.New()

	t.Run("favorite flip leaves other fields untouched", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)
		var saved *model.Note
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Note")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*model.Note) }).
			Return(nil)

		svc := newNoteService(repo)
		fav := true
		note, err := svc.Update(context.Background(), ident(1), noteID, UpdateNoteInput{IsFavorite: &fav})

		require.NoError(t, err)
		assert.True(t, saved.IsFavorite)
		assert.Equal(t, "Groceries", saved.Title)
		assert.Equal(t, "milk eggs bread", saved.Content)
		assert.Equal(t, uint(1), saved.OwnerID)
		assert.True(t, note.IsFavorite)
	})

	t.Run("non-owner update is forbidden and writes nothing", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)

		svc := newNoteService(repo)
		title := "hijacked"
		_, err := svc.Update(context.Background(), ident(2), noteID, UpdateNoteInput{Title: &title})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid image patch rejected atomically", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)

		svc := newNoteService(repo)
		images := []model.Attachment{{Name: "broken.png"}}
		_, err := svc.Update(context.Background(), ident(1), noteID, UpdateNoteInput{Images: &images})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing note", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(nil, gorm.ErrRecordNotFound)

		svc := newNoteService(repo)
		title := "whatever"
		_, err := svc.Update(context.Background(), ident(1), noteID, UpdateNoteInput{Title: &title})

		assert.ErrorIs(t, err, apperrors.ErrNoteNotFound)
	})
}

func TestNoteService_Delete(t *testing.T) {
	noteID := uuid.New()

	t.Run("delete then delete again reports NotFound", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil).Once()
		repo.On("Delete", mock.Anything, noteID).Return(true, nil).Once()
		repo.On("FindByID", mock.Anything, noteID).Return(nil, gorm.ErrRecordNotFound).Once()

		svc := newNoteService(repo)
		require.NoError(t, svc.Delete(context.Background(), ident(1), noteID))
		assert.ErrorIs(t, svc.Delete(context.Background(), ident(1), noteID), apperrors.ErrNoteNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("non-owner delete is forbidden", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 1), nil)

		svc := newNoteService(repo)
		err := svc.Delete(context.Background(), ident(9), noteID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestNoteService_Get_ServesFromCache(t *testing.T) {
	noteID := uuid.New()
	repo := new(MockNoteRepository)
	repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 7), nil).Once()

	cache := newFakeNoteCache()
	svc := NewNoteService(repo, NewAttachmentValidator(), cache)

	_, err := svc.Get(context.Background(), ident(7), noteID)
	require.NoError(t, err)
	require.True(t, cache.contains(noteCacheKey(noteID)))

	// second read must not touch the repository (FindByID mocked Once)
	note, err := svc.Get(context.Background(), ident(7), noteID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", note.Title)
	repo.AssertExpectations(t)
}

func TestNoteService_Get_CachedNoteStillOwnerGated(t *testing.T) {
	noteID := uuid.New()
	cache := newFakeNoteCache()
	cache.SetJSON(context.Background(), noteCacheKey(noteID), ownedNote(noteID, 7), time.Minute)

	svc := NewNoteService(new(MockNoteRepository), NewAttachmentValidator(), cache)
	_, err := svc.Get(context.Background(), ident(8), noteID)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestNoteService_Update_InvalidatesCache(t *testing.T) {
	noteID := uuid.New()
	repo := new(MockNoteRepository)
	repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 7), nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

	cache := newFakeNoteCache()
	cache.SetJSON(context.Background(), noteCacheKey(noteID), ownedNote(noteID, 7), time.Minute)

	svc := NewNoteService(repo, NewAttachmentValidator(), cache)
	fav := true
	_, err := svc.Update(context.Background(), ident(7), noteID, UpdateNoteInput{IsFavorite: &fav})

	require.NoError(t, err)
	assert.False(t, cache.contains(noteCacheKey(noteID)))
}

func TestNoteService_Delete_InvalidatesCache(t *testing.T) {
	noteID := uuid.New()
	repo := new(MockNoteRepository)
	repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 7), nil)
	repo.On("Delete", mock.Anything, noteID).Return(true, nil)

	cache := newFakeNoteCache()
	cache.SetJSON(context.Background(), noteCacheKey(noteID), ownedNote(noteID, 7), time.Minute)

	svc := NewNoteService(repo, NewAttachmentValidator(), cache)
	require.NoError(t, svc.Delete(context.Background(), ident(7), noteID))
	assert.False(t, cache.contains(noteCacheKey(noteID)))
}
