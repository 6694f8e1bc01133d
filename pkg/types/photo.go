package types

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Photo attachment limits.
const (
	MaxPhotos     = 5
	MaxPhotoBytes = 5 << 20
)

// Photo is an image attached to a crop or an expense. The image bytes are
// stored inline as base64.
type Photo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	Data       string    `json:"data"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// NewPhoto builds a photo attachment from raw image bytes.
func NewPhoto(filename, mimeType string, data []byte, now time.Time) Photo {
	return Photo{
		ID:         uuid.NewString(),
		Filename:   filename,
		Size:       int64(len(data)),
		Type:       mimeType,
		Data:       base64.StdEncoding.EncodeToString(data),
		UploadedAt: now.UTC(),
	}
}

// Bytes decodes the inline image data.
func (p Photo) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// validatePhotos checks the attachment count and every photo's type and size.
func validatePhotos(v *ValidationError, photos []Photo) {
	if len(photos) > MaxPhotos {
		v.Add("photos", "at most 5 photos may be attached")
		return
	}
	for _, p := range photos {
		if !strings.HasPrefix(p.Type, "image/") {
			v.Add("photos", p.Filename+": not an image")
			return
		}
		if p.Size > MaxPhotoBytes {
			v.Add("photos", p.Filename+": larger than 5MB")
			return
		}
	}
}
