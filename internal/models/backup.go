package models

import "time"

// Backup tracks a database backup file on disk.
type Backup struct {
	ID        uint   `gorm:"primaryKey"`
	FileName  string `gorm:"size:128;not null"`
	FilePath  string `gorm:"size:255;not null"`
	Size      int64  `gorm:"not null"`
	CreatedBy string `gorm:"size:64"`
	CreatedAt time.Time
}
