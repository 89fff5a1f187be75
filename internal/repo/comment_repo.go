// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Comment model.
//
// Comments are hard deleted. Ownership is enforced in the WHERE clause of
// DeleteComment so a non-owner can never remove a row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

// CreateComment inserts a comment by userID on photoID.
func CreateComment(ctx context.Context, db *gorm.DB, userID, photoID uint, body string) (*domain.Comment, error) {
	c := &domain.Comment{
		UserID:    userID,
		PhotoID:   photoID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListCommentsByPhoto returns a photo's comments newest first, each joined
// with its author's username.
func ListCommentsByPhoto(ctx context.Context, db *gorm.DB, photoID uint) ([]domain.CommentWithAuthor, error) {
	out := []domain.CommentWithAuthor{}
	err := db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.comment AS body, c.created_at, c.user_id, u.username").
		Joins("JOIN users AS u ON u.id = c.user_id").
		Where("c.photo_id = ?", photoID).
		Order("c.created_at DESC, c.id DESC").
		Scan(&out).Error
	return out, err
}

// DeleteComment removes comment id when it belongs to userID and reports
// whether a row was deleted.
func DeleteComment(ctx context.Context, db *gorm.DB, id, userID uint) (bool, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Comment{})
	return res.RowsAffected > 0, res.Error
}

// CommentCounts returns the number of comments per photo for the given ids.
// Photos without comments are absent from the map.
func CommentCounts(ctx context.Context, db *gorm.DB, photoIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(photoIDs))
	if len(photoIDs) == 0 {
		return out, nil
	}
	var rows []photoCount
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("photo_id, COUNT(*) AS n").
		Where("photo_id IN ?", photoIDs).
		Group("photo_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PhotoID] = r.N
	}
	return out, nil
}
