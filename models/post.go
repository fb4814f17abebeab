package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a publication. A post is publicly visible only when it is published,
// its publication time has passed, and its category (when set) is published;
// the author always sees their own posts regardless.
//
// PubDate may lie in the future to schedule delayed publications.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:256;not null" json:"title"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time  `gorm:"index;not null" json:"pub_date"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	LocationID  *uint      `gorm:"index" json:"location_id"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	Image       string     `gorm:"size:512" json:"image"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	Author      User       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Location    *Location  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`
	Category    *Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Comments    []Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.PubDate.IsZero() {
		p.PubDate = p.CreatedAt
	}
	return nil
}
