package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/repository"
)

const (
	// MaxTranscriptionBytes caps an audio upload submitted for transcription.
	MaxTranscriptionBytes = 25 * 1024 * 1024
	// DefaultTranscriptionDelay is how long the stub worker waits before
	// completing a transcription.
	DefaultTranscriptionDelay = 2 * time.Second

	defaultTranscriptionTitle = "Untitled Transcription"
	pendingTranscriptionBody  = "Transcription in progress..."

	// placeholderTranscript stands in for the output of an external
	// speech-to-text collaborator, which this service only stubs.
	placeholderTranscript = "This is a simulated transcription. A real deployment would delegate the audio to an external speech-to-text service."
)

var allowedTranscriptionTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/ogg":   true,
	"audio/webm":  true,
}

// TranscriptionService accepts audio uploads and tracks their stubbed
// speech-to-text lifecycle on a note.
type TranscriptionService interface {
	Submit(ctx context.Context, ident *auth.Identity, title, fileName, contentType string, audio []byte) (*model.Note, error)
	Status(ctx context.Context, ident *auth.Identity, noteID uuid.UUID) (*model.Transcription, error)
}

type transcriptionService struct {
	notes repository.NoteRepository
	cache NoteCache
	delay time.Duration
}

// NewTranscriptionService creates a transcription service whose stub worker
// completes after the given delay.
func NewTranscriptionService(notes repository.NoteRepository, cacheClient NoteCache, delay time.Duration) TranscriptionService {
	return &transcriptionService{notes: notes, cache: cacheClient, delay: delay}
}

// Submit validates the audio payload, creates a note with a pending
// transcription, and kicks off the stub worker.
func (s *transcriptionService) Submit(ctx context.Context, ident *auth.Identity, title, fileName, contentType string, audio []byte) (*model.Note, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !allowedTranscriptionTypes[contentType] {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidFileType,
			fmt.Sprintf("invalid file type: %s, only audio files are allowed", contentType), fileName)
	}
	if int64(len(audio)) > MaxTranscriptionBytes {
		return nil, apperrors.NewValidationError(apperrors.CodeFileTooLarge, "file size exceeds 25MB limit", fileName)
	}
	if title == "" {
		title = defaultTranscriptionTitle
	}

	note := &model.Note{
		OwnerID: ident.UserID,
		Title:   title,
		Content: pendingTranscriptionBody,
		Audio: &model.Attachment{
			Name:        fileName,
			ContentType: contentType,
			Data:        base64.StdEncoding.EncodeToString(audio),
		},
		Transcription: &model.Transcription{Status: model.TranscriptionStatusPending},
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create transcription note: %w: %v", apperrors.ErrStorage, err)
	}

	go s.complete(note.ID)

	return note, nil
}

// Status reports the transcription state of a note, ownership enforced.
func (s *transcriptionService) Status(ctx context.Context, ident *auth.Identity, noteID uuid.UUID) (*model.Transcription, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w: %v", apperrors.ErrStorage, err)
	}
	if err := auth.RequireOwnership(note, ident); err != nil {
		return nil, err
	}
	if note.Transcription == nil {
		return &model.Transcription{Status: model.TranscriptionStatusPending}, nil
	}
	return note.Transcription, nil
}

// complete is the stub worker: after the configured delay it writes the
// placeholder transcript onto the note. A real implementation would call out
// to the transcription provider here.
func (s *transcriptionService) complete(noteID uuid.UUID) {
	time.Sleep(s.delay)

	ctx := context.Background()
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return // note deleted before the worker ran
	}

	note.Content = placeholderTranscript
	note.Transcription = &model.Transcription{
		Status: model.TranscriptionStatusCompleted,
		Text:   placeholderTranscript,
	}
	if err := s.notes.Update(ctx, note); err != nil {
		failed := &model.Note{}
		*failed = *note
		failed.Transcription = &model.Transcription{
			Status: model.TranscriptionStatusFailed,
			Error:  err.Error(),
		}
		_ = s.notes.Update(ctx, failed)
	}
	// The note changed behind the read cache; drop any copy cached while pending.
	_ = s.cache.Delete(ctx, noteCacheKey(noteID))
}
