// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Photo model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

// CreatePhoto inserts a photo owned by userID.
func CreatePhoto(ctx context.Context, db *gorm.DB, userID uint, imageURL string) (*domain.Photo, error) {
	p := &domain.Photo{
		UserID:    userID,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ListPhotosNewestFirst returns every photo joined with its owner's username,
// ordered (created_at DESC, id DESC) so ties resolve deterministically.
func ListPhotosNewestFirst(ctx context.Context, db *gorm.DB) ([]domain.PhotoWithOwner, error) {
	out := []domain.PhotoWithOwner{}
	err := db.WithContext(ctx).
		Table("photos AS p").
		Select("p.id, p.image_url, p.created_at, u.username").
		Joins("JOIN users AS u ON u.id = p.user_id").
		Order("p.created_at DESC, p.id DESC").
		Scan(&out).Error
	return out, err
}

// PhotoExists reports whether a photo with the given id is stored.
func PhotoExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Photo{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
