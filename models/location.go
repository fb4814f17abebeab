package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is a geographic tag for posts, with the same nullable reference
// semantics as Category.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return nil
}
