// Package services – FeedService
//
// This file implements the photo feed: the newest-first photo listing
// decorated with per-photo statistics for the viewing user. The statistics
// are computed by Projector in three grouped queries (active likes,
// comments, the viewer's likes) inside one read transaction, then merged in
// input order. A photo missing from an aggregate has a zero count.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StatsRepo defines the aggregate queries required by Projector.
type StatsRepo interface {
	// LikeCounts returns active likes per photo id.
	LikeCounts(ctx context.Context, db *gorm.DB, photoIDs []uint) (map[uint]int64, error)

	// CommentCounts returns comments per photo id.
	CommentCounts(ctx context.Context, db *gorm.DB, photoIDs []uint) (map[uint]int64, error)

	// LikedPhotoIDs returns the ids among photoIDs the viewer currently likes.
	LikedPhotoIDs(ctx context.Context, db *gorm.DB, userID uint, photoIDs []uint) (map[uint]bool, error)
}

// GormStatsRepo is the StatsRepo backed by the repo package.
type GormStatsRepo struct{}

func (GormStatsRepo) LikeCounts(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	return repo.LikeCounts(ctx, db, ids)
}

func (GormStatsRepo) CommentCounts(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]int64, error) {
	return repo.CommentCounts(ctx, db, ids)
}

func (GormStatsRepo) LikedPhotoIDs(ctx context.Context, db *gorm.DB, userID uint, ids []uint) (map[uint]bool, error) {
	return repo.LikedPhotoIDs(ctx, db, userID, ids)
}

// Projector decorates listed photos with likeCount, commentCount and
// isLiked for one viewer.
type Projector struct {
	DB   *gorm.DB
	Repo StatsRepo
}

// NewProjector returns a Projector over the default repository.
func NewProjector(db *gorm.DB) *Projector {
	return &Projector{DB: db, Repo: GormStatsRepo{}}
}

// Project returns one FeedItem per photo, in the order given. Any storage
// error fails the whole projection. No photos yields an empty, non-nil slice.
func (p *Projector) Project(ctx context.Context, viewerID uint, photos []domain.PhotoWithOwner) ([]domain.FeedItem, error) {
	out := make([]domain.FeedItem, 0, len(photos))
	if len(photos) == 0 {
		return out, nil
	}

	ids := make([]uint, len(photos))
	for i, ph := range photos {
		ids[i] = ph.ID
	}

	var (
		likes    map[uint]int64
		comments map[uint]int64
		liked    map[uint]bool
	)
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if likes, err = p.Repo.LikeCounts(ctx, tx, ids); err != nil {
			return fmt.Errorf("like counts: %w", err)
		}
		if comments, err = p.Repo.CommentCounts(ctx, tx, ids); err != nil {
			return fmt.Errorf("comment counts: %w", err)
		}
		if liked, err = p.Repo.LikedPhotoIDs(ctx, tx, viewerID, ids); err != nil {
			return fmt.Errorf("viewer likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ph := range photos {
		out = append(out, domain.FeedItem{
			ID:           ph.ID,
			ImageURL:     ph.ImageURL,
			CreatedAt:    ph.CreatedAt,
			Username:     ph.Username,
			LikeCount:    likes[ph.ID],
			CommentCount: comments[ph.ID],
			IsLiked:      liked[ph.ID],
		})
	}
	return out, nil
}

// FeedService serves the photo feed.
type FeedService struct {
	DB        *gorm.DB
	Projector *Projector

	// Timeout bounds listing plus projection, and Fingerprint separately.
	// Zero disables it.
	Timeout time.Duration
}

// NewFeedService wires a FeedService with the default Projector.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{DB: db, Projector: NewProjector(db)}
}

// GetFeed lists every photo newest first with the viewer's statistics.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint) ([]domain.FeedItem, error) {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "GetFeed",
		trace.WithAttributes(attribute.Int64("viewer.id", int64(viewerID))),
	)
	defer span.End()

	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	photos, err := repo.ListPhotosNewestFirst(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	items, err := s.Projector.Project(ctx, viewerID, photos)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.size", len(items)))
	return items, nil
}

// Fingerprint returns the aggregate used to build the feed's ETag.
func (s *FeedService) Fingerprint(ctx context.Context, viewerID uint) (repo.FeedStats, error) {
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	return repo.PhotosStats(ctx, s.DB, viewerID)
}
