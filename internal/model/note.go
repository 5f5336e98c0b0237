package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TranscriptionStatus represents the lifecycle of a speech-to-text request.
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"
	TranscriptionStatusProcessing TranscriptionStatus = "processing"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

// Attachment is an image or audio payload embedded on a note. Data holds the
// base64-encoded bytes.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

// Transcription tracks the state of a stubbed speech-to-text run for a note.
type Transcription struct {
	Status TranscriptionStatus `json:"status"`
	Text   string              `json:"text,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Note represents a user note with embedded attachments.
type Note struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID       uint           `json:"owner_id" gorm:"not null;index"`
	Title         string         `json:"title" gorm:"size:255;not null"`
	Content       string         `json:"content" gorm:"type:text"`
	IsFavorite    bool           `json:"is_favorite" gorm:"default:false;index"`
	Images        []Attachment   `json:"images" gorm:"serializer:json;type:longtext"`
	Audio         *Attachment    `json:"audio,omitempty" gorm:"serializer:json;type:longtext"`
	Transcription *Transcription `json:"transcription,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Relations
	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
