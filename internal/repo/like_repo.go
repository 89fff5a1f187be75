// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the ledger primitives for the Like model.
//
// A (user_id, photo_id) pair owns at most one row for its whole lifetime.
// The helpers below never delete rows: "unlike" stamps deleted_at and "like
// again" clears it. Every state change is a compare-and-set on deleted_at so
// two writers racing on the same row cannot both win.
//
// Functions:
//
//   - GetLike(ctx, db, userID, photoID) -> *domain.Like, error
//   - InsertLikeIfAbsent(ctx, db, userID, photoID, now) -> *domain.Like, inserted, error
//   - MarkUnliked(ctx, db, id, now) -> changed, error
//   - Reactivate(ctx, db, id, now) -> changed, error
//   - ReactivatePair(ctx, db, userID, photoID, now) -> error
//   - LikeCounts(ctx, db, photoIDs) -> map[photoID]count, error
//   - LikedPhotoIDs(ctx, db, userID, photoIDs) -> set of liked photo ids, error
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

// GetLike returns the ledger row for (userID, photoID) regardless of its
// deleted_at value, or ErrNotFound when the pair has never been liked.
func GetLike(ctx context.Context, db *gorm.DB, userID, photoID uint) (*domain.Like, error) {
	var l domain.Like
	err := db.WithContext(ctx).
		Where("user_id = ? AND photo_id = ?", userID, photoID).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// InsertLikeIfAbsent inserts a liked row for the pair using
// ON CONFLICT (user_id, photo_id) DO NOTHING. inserted is false when another
// writer already owns the pair's row; the caller decides how to converge.
func InsertLikeIfAbsent(ctx context.Context, db *gorm.DB, userID, photoID uint, now time.Time) (*domain.Like, bool, error) {
	l := &domain.Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		PhotoID:   photoID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "photo_id"}},
			DoNothing: true,
		}).
		Create(l)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return l, true, nil
}

// MarkUnliked soft-deletes a liked row. changed is false when the row was
// already unliked (or vanished), meaning a concurrent toggle got there first.
func MarkUnliked(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"deleted_at": now, "updated_at": now})
	return res.RowsAffected == 1, res.Error
}

// Reactivate clears deleted_at on an unliked row. changed is false when the
// row was already liked.
func Reactivate(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]any{"deleted_at": nil, "updated_at": now})
	return res.RowsAffected == 1, res.Error
}

// ReactivatePair forces the pair's row into the liked state. It is the
// convergence path after an insert conflict.
func ReactivatePair(ctx context.Context, db *gorm.DB, userID, photoID uint, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ? AND photo_id = ? AND deleted_at IS NOT NULL", userID, photoID).
		Updates(map[string]any{"deleted_at": nil, "updated_at": now}).Error
}

type photoCount struct {
	PhotoID uint
	N       int64
}

// LikeCounts returns the number of active likes per photo for the given ids.
// Photos without likes are absent from the map.
func LikeCounts(ctx context.Context, db *gorm.DB, photoIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(photoIDs))
	if len(photoIDs) == 0 {
		return out, nil
	}
	var rows []photoCount
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Select("photo_id, COUNT(*) AS n").
		Where("photo_id IN ? AND deleted_at IS NULL", photoIDs).
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

// LikedPhotoIDs returns the subset of photoIDs the user currently likes.
func LikedPhotoIDs(ctx context.Context, db *gorm.DB, userID uint, photoIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(photoIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ? AND photo_id IN ? AND deleted_at IS NULL", userID, photoIDs).
		Pluck("photo_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
