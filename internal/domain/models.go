// Package domain defines the persistence models for users, photos, comments
// and likes, plus the derived read models returned by the photo feed. These
// types are mapped with GORM and form the core data layer of the gallery.
package domain

import (
	"time"
)

// User is a registered account. Usernames are unique case-insensitively and
// emails are stored lower-cased.
type User struct {
	ID           uint      `json:"id"         gorm:"primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username_lower,expression:LOWER(username)"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"          gorm:"column:password;type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Photo is an uploaded image owned by a user. ImageURL holds the storage
// name (local uploads) or the public object URL (S3).
type Photo struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UserID    uint      `json:"user_id"    gorm:"not null;index"`
	ImageURL  string    `json:"image_url"  gorm:"type:varchar(512);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_photos_created"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Photo.
func (Photo) TableName() string { return "photos" }

// PhotoWithOwner is a photo joined with its owner's username, as returned
// by the newest-first listing.
type PhotoWithOwner struct {
	ID        uint      `json:"id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
}

// Comment is a plain text comment on a photo. Comments are hard deleted.
type Comment struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UserID    uint      `json:"user_id"    gorm:"not null;index"`
	PhotoID   uint      `json:"photo_id"   gorm:"not null;index:idx_comments_photo"`
	Body      string    `json:"comment"    gorm:"column:comment;type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Photo Photo `json:"-" gorm:"foreignKey:PhotoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// CommentWithAuthor is a comment joined with its author's username.
type CommentWithAuthor struct {
	ID        uint      `json:"id"`
	Body      string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
}
