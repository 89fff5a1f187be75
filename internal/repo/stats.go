// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

// FeedStats is a cheap fingerprint of everything the photo feed renders for
// one viewer. Any like toggle, comment or upload changes at least one field.
type FeedStats struct {
	Photos        int64
	LatestPhoto   *time.Time
	ActiveLikes   int64
	Comments      int64
	LatestLike    *time.Time
	ViewerLikes   int64
	LatestComment *time.Time
}

// PhotosStats gathers the FeedStats for viewerID.
//
// It executes a handful of lightweight count/latest queries. When there are
// no photos the remaining queries are skipped and the zero value is
// returned.
func PhotosStats(ctx context.Context, db *gorm.DB, viewerID uint) (FeedStats, error) {
	var st FeedStats
	q := db.WithContext(ctx)

	if err := q.Model(&domain.Photo{}).Count(&st.Photos).Error; err != nil {
		return FeedStats{}, err
	}
	if st.Photos == 0 {
		return st, nil
	}

	var err error
	if st.LatestPhoto, err = latest(q.Model(&domain.Photo{}), "created_at"); err != nil {
		return FeedStats{}, err
	}
	if err = q.Model(&domain.Like{}).Where("deleted_at IS NULL").Count(&st.ActiveLikes).Error; err != nil {
		return FeedStats{}, err
	}
	if err = q.Model(&domain.Like{}).Where("user_id = ? AND deleted_at IS NULL", viewerID).Count(&st.ViewerLikes).Error; err != nil {
		return FeedStats{}, err
	}
	if st.LatestLike, err = latest(q.Model(&domain.Like{}), "updated_at"); err != nil {
		return FeedStats{}, err
	}
	if err = q.Model(&domain.Comment{}).Count(&st.Comments).Error; err != nil {
		return FeedStats{}, err
	}
	if st.LatestComment, err = latest(q.Model(&domain.Comment{}), "created_at"); err != nil {
		return FeedStats{}, err
	}
	return st, nil
}

// latest returns the greatest value of a timestamp column, or nil when the
// table is empty.
func latest(q *gorm.DB, column string) (*time.Time, error) {
	// Get latest value (avoid MAX() -> TEXT in SQLite)
	var rows []time.Time
	if err := q.Order(column+" DESC").Limit(1).Pluck(column, &rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
