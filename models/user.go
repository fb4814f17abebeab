package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an author account. Passwords are stored as bcrypt hashes only;
// OAuth-provisioned accounts keep the provider identity instead.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Provider     string         `gorm:"size:32" json:"provider,omitempty"`
	ProviderID   string         `gorm:"size:255" json:"-"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Bio          string         `gorm:"size:255" json:"bio"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Posts        []Post         `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment      `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
