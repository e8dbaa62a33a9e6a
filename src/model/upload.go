package model

import "time"

// Upload is one ingested portfolio CSV, kept as an immutable snapshot.
// Its Positions live and die with it.
type Upload struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SourceFilename string     `gorm:"size:255;not null" json:"source_filename"`
	UploadedAt     time.Time  `gorm:"index;not null" json:"uploaded_at"`
	Positions      []Position `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"positions,omitempty"`
}

// TableName allows you to control the exact table name for uploads.
func (Upload) TableName() string {
	return "uploads"
}
