package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notehub/internal/model"
)

// FileRepository defines stored file persistence operations.
type FileRepository interface {
	Create(ctx context.Context, file *model.StoredFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StoredFile, error)
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository creates a new file repository.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.StoredFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StoredFile, error) {
	var file model.StoredFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}
