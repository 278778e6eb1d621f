package models

import "gorm.io/gorm"

// UploadedDocument keeps the analysis produced for a user upload. The file
// itself is not retained. Listings are most-recent-first.
type UploadedDocument struct {
	gorm.Model
	UserID   uint   `gorm:"index"`
	FileName string
	Analysis string `gorm:"type:text"`
}
