package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredFile is an uploaded binary object, retrievable by its opaque id.
type StoredFile struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	ContentType string    `json:"content_type" gorm:"size:100;not null"`
	Size        int64     `json:"size" gorm:"not null"`
	Data        []byte    `json:"-" gorm:"type:longblob"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (f *StoredFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
