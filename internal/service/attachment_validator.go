package service

import (
	apperrors "notehub/internal/errors"
	"notehub/internal/model"
)

const (
	// MaxImagesPerNote caps the embedded image list on a note.
	MaxImagesPerNote = 10
	// MaxAttachmentBytes caps the decoded size of a single embedded attachment.
	MaxAttachmentBytes = 5 * 1024 * 1024
)

// AttachmentValidator validates embedded image and audio payloads.
// It is a pure function over its input; rules are applied in order and the
// first violation wins.
type AttachmentValidator struct{}

// NewAttachmentValidator creates a new attachment validator.
func NewAttachmentValidator() *AttachmentValidator {
	return &AttachmentValidator{}
}

// Validate checks the image list and the optional audio attachment.
func (v *AttachmentValidator) Validate(images []model.Attachment, audio *model.Attachment) error {
	if len(images) > MaxImagesPerNote {
		return apperrors.NewValidationError(apperrors.CodeTooManyImages, "a note may carry at most 10 images", "")
	}

	for _, img := range images {
		if img.Name == "" || img.ContentType == "" || img.Data == "" {
			return apperrors.NewValidationError(apperrors.CodeInvalidImage, "image requires name, content type and data", img.Name)
		}
		if decodedSize(img.Data) > MaxAttachmentBytes {
			return apperrors.NewValidationError(apperrors.CodeImageTooLarge, "image exceeds the 5MiB limit", img.Name)
		}
	}

	if audio != nil {
		if audio.Name == "" || audio.ContentType == "" || audio.Data == "" {
			return apperrors.NewValidationError(apperrors.CodeInvalidImage, "audio requires name, content type and data", audio.Name)
		}
		if decodedSize(audio.Data) > MaxAttachmentBytes {
			return apperrors.NewValidationError(apperrors.CodeImageTooLarge, "audio exceeds the 5MiB limit", audio.Name)
		}
	}

	return nil
}

// decodedSize approximates the decoded byte count of a base64 payload as
// base64Length * 0.75, without decoding it.
func decodedSize(data string) int {
	return len(data) * 3 / 4
}
