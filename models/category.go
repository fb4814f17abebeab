package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is a thematic section posts may belong to. Deleting a category
// detaches its posts (SET NULL) rather than deleting them.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []Post    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

// BeforeCreate pins the creation timestamp once; it is never updated afterwards.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}
