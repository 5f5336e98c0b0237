package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notehub/internal/auth"
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
	"notehub/internal/repository"
)

// MaxUploadBytes caps a single binary upload.
const MaxUploadBytes = 5 * 1024 * 1024

// allowedUploadTypes is the MIME allow-list for binary uploads.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"audio/webm": true,
	"audio/wav":  true,
	"audio/mp3":  true,
	"audio/mpeg": true,
}

// FileService stores and serves uploaded binary objects.
type FileService interface {
	Upload(ctx context.Context, ident *auth.Identity, name, contentType string, data []byte) (*model.StoredFile, error)
	Fetch(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*model.StoredFile, error)
}

type fileService struct {
	files repository.FileRepository
}

// NewFileService creates a new file service.
func NewFileService(files repository.FileRepository) FileService {
	return &fileService{files: files}
}

// Upload validates the MIME type and size ceiling, then persists the object.
// The type check runs first so a disallowed type fails regardless of size.
func (s *fileService) Upload(ctx context.Context, ident *auth.Identity, name, contentType string, data []byte) (*model.StoredFile, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !allowedUploadTypes[contentType] {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidFileType,
			fmt.Sprintf("invalid file type: %s", contentType), name)
	}
	if int64(len(data)) > MaxUploadBytes {
		code := apperrors.CodeFileTooLarge
		if strings.HasPrefix(contentType, "image/") {
			code = apperrors.CodeImageTooLarge
		}
		return nil, apperrors.NewValidationError(code, "file size exceeds 5MB limit", name)
	}

	file := &model.StoredFile{
		OwnerID:     ident.UserID,
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("store file: %w: %v", apperrors.ErrStorage, err)
	}
	return file, nil
}

// Fetch returns a stored file, gated by the same ownership check as notes.
func (s *fileService) Fetch(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*model.StoredFile, error) {
	if ident == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	file, err := s.files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w: %v", apperrors.ErrStorage, err)
	}
	if file.OwnerID != ident.UserID {
		return nil, apperrors.ErrForbidden
	}
	return file, nil
}
