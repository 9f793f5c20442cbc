package models

import (
	"time"

	"gorm.io/gorm"
)

// UploadRecord describes one stored upload. StoredName is unique for the
// lifetime of the process.
type UploadRecord struct {
	gorm.Model
	OriginalName string    `gorm:"size:255;not null" json:"originalName"`
	StoredName   string    `gorm:"size:300;uniqueIndex;not null" json:"storedName"`
	Path         string    `gorm:"size:500;not null" json:"-"`
	URL          string    `gorm:"size:700;not null" json:"fileUrl"`
	Size         int64     `json:"size"`
	Checksum     string    `gorm:"size:64" json:"checksum"` // blake2b-256 hex
	Kind         string    `gorm:"size:20" json:"kind"`
	SessionID    string    `gorm:"size:36;index" json:"sessionId,omitempty"` // empty for anonymous uploads
	UploadedAt   time.Time `gorm:"index" json:"uploadedAt"`
}
