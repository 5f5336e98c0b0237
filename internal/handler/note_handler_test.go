package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notehub/internal/auth"
	"notehub/internal/model"
	"notehub/internal/repository"
	"notehub/internal/service"
)

// MockNoteService is a mock implementation of NoteService.
type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Create(ctx context.Context, ident *auth.Identity, input service.CreateNoteInput) (*model.Note, error) {
	args := m.Called(ctx, ident, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, ident, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, ident *auth.Identity, filter repository.NoteFilter) ([]model.Note, error) {
	args := m.Called(ctx, ident, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, ident *auth.Identity, id uuid.UUID, patch service.UpdateNoteInput) (*model.Note, error) {
	args := m.Called(ctx, ident, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, ident *auth.Identity, id uuid.UUID) error {
	args := m.Called(ctx, ident, id)
	return args.Error(0)
}

func listContext(t *testing.T, query string) echo.Context {
	t.Helper()
	target := "/api/notes"
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(auth.ContextKey, &auth.Claims{UserID: 7, Email: "user@example.com"})
	return c
}

func TestNoteHandler_ListNotes_FavoritesParam(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		favoritesOnly bool
	}{
		{"lowercase true", "favorites=true", true},
		{"numeric true", "favorites=1", true},
		{"uppercase true", "favorites=TRUE", true},
		{"explicit false", "favorites=0", false},
		{"absent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockNoteService)
			svc.On("List", mock.Anything, mock.AnythingOfType("*auth.Identity"),
				repository.NoteFilter{FavoritesOnly: tt.favoritesOnly}).Return([]model.Note{}, nil)

			h := NewNoteHandler(svc)
			c := listContext(t, tt.query)

			require.NoError(t, h.ListNotes(c))
			assert.Equal(t, http.StatusOK, c.Response().Status)
			svc.AssertExpectations(t)
		})
	}
}

func TestNoteHandler_ListNotes_SearchParamTrimmed(t *testing.T) {
	svc := new(MockNoteService)
	svc.On("List", mock.Anything, mock.AnythingOfType("*auth.Identity"),
		repository.NoteFilter{SearchText: "groceries"}).Return([]model.Note{}, nil)

	h := NewNoteHandler(svc)
	c := listContext(t, "search=%20groceries%20")

	require.NoError(t, h.ListNotes(c))
	svc.AssertExpectations(t)
}
