package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reply attached to a post. Comments are listed oldest first and
// inherit visibility from their parent post. New comments are created
// published; the flag exists for curation. IsPublished carries no default
// tag: GORM omits zero values for defaulted columns, so an explicit false
// would not survive the insert.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}
