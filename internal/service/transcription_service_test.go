package service

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "notehub/internal/errors"
	"notehub/internal/model"
)

func TestTranscriptionService_Submit(t *testing.T) {
	t.Run("rejects non-audio uploads before storage", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)

		_, err := svc.Submit(context.Background(), ident(1), "Standup", "notes.pdf", "application/pdf", []byte("%PDF"))

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, apperrors.CodeInvalidFileType, vErr.Code)
		assert.Equal(t, "notes.pdf", vErr.Name)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized audio", func(t *testing.T) {
		repo := new(MockNoteRepository)
		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)

		_, err := svc.Submit(context.Background(), ident(1), "", "long.wav", "audio/wav",
			make([]byte, MaxTranscriptionBytes+1))

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, apperrors.CodeFileTooLarge, vErr.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates a pending note with the encoded audio", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)
		repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, assert.AnError).Maybe()

		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)
		raw := []byte("RIFF....WAVE")
		note, err := svc.Submit(context.Background(), ident(7), "", "memo.wav", "audio/wav", raw)

		require.NoError(t, err)
		assert.Equal(t, uint(7), note.OwnerID)
		assert.Equal(t, "Untitled Transcription", note.Title)
		assert.Equal(t, "Transcription in progress...", note.Content)
		require.NotNil(t, note.Transcription)
		assert.Equal(t, model.TranscriptionStatusPending, note.Transcription.Status)
		require.NotNil(t, note.Audio)
		assert.Equal(t, base64.StdEncoding.EncodeToString(raw), note.Audio.Data)
	})

	t.Run("worker completes the transcription after the delay", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

		pending := &model.Note{
			OwnerID:       7,
			Title:         "Untitled Transcription",
			Content:       "Transcription in progress...",
			Transcription: &model.Transcription{Status: model.TranscriptionStatusPending},
		}
		repo.On("FindByID", mock.Anything, mock.Anything).Return(pending, nil)

		var mu sync.Mutex
		var completed *model.Note
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Note")).
			Run(func(args mock.Arguments) {
				mu.Lock()
				completed = args.Get(1).(*model.Note)
				mu.Unlock()
			}).
			Return(nil)

		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)
		_, err := svc.Submit(context.Background(), ident(7), "", "memo.wav", "audio/wav", []byte("audio"))
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return completed != nil
		}, time.Second, 5*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		require.NotNil(t, completed.Transcription)
		assert.Equal(t, model.TranscriptionStatusCompleted, completed.Transcription.Status)
		assert.NotEmpty(t, completed.Transcription.Text)
		assert.Equal(t, completed.Transcription.Text, completed.Content)
	})

	t.Run("worker completion drops the cached pending copy", func(t *testing.T) {
		noteID := uuid.New()
		repo := new(MockNoteRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Note).ID = noteID }).
			Return(nil)

		pending := &model.Note{
			ID:            noteID,
			OwnerID:       7,
			Title:         "Untitled Transcription",
			Content:       "Transcription in progress...",
			Transcription: &model.Transcription{Status: model.TranscriptionStatusPending},
		}
		repo.On("FindByID", mock.Anything, noteID).Return(pending, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

		// A read while the transcription is pending leaves a cached copy behind.
		cache := newFakeNoteCache()
		cache.SetJSON(context.Background(), noteCacheKey(noteID), pending, time.Minute)

		svc := NewTranscriptionService(repo, cache, time.Millisecond)
		_, err := svc.Submit(context.Background(), ident(7), "", "memo.wav", "audio/wav", []byte("audio"))
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return !cache.contains(noteCacheKey(noteID))
		}, time.Second, 5*time.Millisecond, "completed note must not be served stale from the cache")
	})
}

func TestTranscriptionService_Status(t *testing.T) {
	noteID := uuid.New()

	t.Run("reports the stored transcription to the owner", func(t *testing.T) {
		repo := new(MockNoteRepository)
		note := ownedNote(noteID, 7)
		note.Transcription = &model.Transcription{Status: model.TranscriptionStatusCompleted, Text: "hello"}
		repo.On("FindByID", mock.Anything, noteID).Return(note, nil)

		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)
		tr, err := svc.Status(context.Background(), ident(7), noteID)

		require.NoError(t, err)
		assert.Equal(t, model.TranscriptionStatusCompleted, tr.Status)
		assert.Equal(t, "hello", tr.Text)
	})

	t.Run("missing transcription reads as pending", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 7), nil)

		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)
		tr, err := svc.Status(context.Background(), ident(7), noteID)

		require.NoError(t, err)
		assert.Equal(t, model.TranscriptionStatusPending, tr.Status)
	})

	t.Run("another user's note is forbidden", func(t *testing.T) {
		repo := new(MockNoteRepository)
		repo.On("FindByID", mock.Anything, noteID).Return(ownedNote(noteID, 7), nil)

		svc := NewTranscriptionService(repo, newFakeNoteCache(), time.Millisecond)
		_, err := svc.Status(context.Background(), ident(8), noteID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
