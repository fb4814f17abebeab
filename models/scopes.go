package models

import (
	"time"

	"gorm.io/gorm"
)

// VisiblePosts narrows a posts query to publicly visible publications:
// published, due by now, and either uncategorized or in a published category.
// Listing surfaces apply this scope in SQL instead of filtering in memory.
// The category check is a subquery so the scope composes with Count and
// Preload without column collisions.
func VisiblePosts(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("posts.category_id IS NULL OR posts.category_id IN (SELECT id FROM categories WHERE categories.is_published = ?)", true)
	}
}

// DuePosts applies only the published/due clauses. Category listings use it
// because the category itself has already been checked for publication.
func DuePosts(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now)
	}
}

// RecentFirst is the default post ordering, newest publication first.
func RecentFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.pub_date DESC")
}

// OldestFirst is the comment-thread ordering.
func OldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at ASC")
}
