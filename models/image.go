package models

import "time"

// Image records an uploaded post illustration stored under the uploads
// directory. Rows are audit records; the post itself references the URL.
type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	FilePath  string    `gorm:"size:1024;not null" json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
