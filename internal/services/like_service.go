// Package services – LikeService
//
// This file implements the like ledger: a toggle flips a (user, photo) pair
// between liked and unliked while keeping exactly one row per pair. The row
// is never deleted; unliking stamps deleted_at and liking again clears it.
//
//	ABSENT  --toggle--> LIKED    (insert, 201 at the edge)
//	LIKED   --toggle--> UNLIKED  (deleted_at = now)
//	UNLIKED --toggle--> LIKED    (deleted_at = NULL)
//
// Read and write happen in one transaction. The insert uses ON CONFLICT DO
// NOTHING and the updates are compare-and-set on deleted_at, so concurrent
// toggles of the same pair cannot create a second row or leave deleted_at
// in a half-written state. A first-time toggle that loses the insert race
// converges on the liked state of the winner's row.
//
// Observability: Toggle is OpenTelemetry-instrumented and counts each
// transition in gallery_like_toggles_total.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LikeService owns the like ledger.
type LikeService struct {
	DB *gorm.DB

	// Locker, when set, serializes toggles of the same pair across nodes.
	Locker PairLocker

	// CheckPhoto rejects toggles for photos that do not exist with
	// ErrPhotoNotFound instead of relying on the caller.
	CheckPhoto bool

	// Timeout bounds the whole toggle, lock wait included. Zero disables it.
	Timeout time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *LikeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Toggle flips the like state of (userID, photoID) and reports the edge
// taken. photoID must be non-zero.
func (s *LikeService) Toggle(ctx context.Context, userID, photoID uint) (domain.ToggleResult, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int64("photo.id", int64(photoID)),
		),
	)
	defer span.End()

	if photoID == 0 {
		return domain.ToggleResult{}, ErrPhotoIDRequired
	}

	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()

	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, userID, photoID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock")
			return domain.ToggleResult{}, err
		}
		defer unlock()
	}

	var res domain.ToggleResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.CheckPhoto {
			ok, err := repo.PhotoExists(ctx, tx, photoID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrPhotoNotFound
			}
		}

		cur, err := repo.GetLike(ctx, tx, userID, photoID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		res, err = s.apply(ctx, tx, userID, photoID, cur)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPhotoNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "toggle")
		}
		return domain.ToggleResult{}, err
	}

	likeToggles.WithLabelValues(string(res.Transition)).Inc()
	span.SetAttributes(
		attribute.String("like.transition", string(res.Transition)),
		attribute.String("like.state", res.State.String()),
	)
	return res, nil
}

// apply performs the single write that moves cur to StateOf(cur).Next().
func (s *LikeService) apply(ctx context.Context, tx *gorm.DB, userID, photoID uint, cur *domain.Like) (domain.ToggleResult, error) {
	now := s.now()
	from := domain.StateOf(cur)
	to := from.Next()

	if to == domain.LikeUnliked {
		changed, err := repo.MarkUnliked(ctx, tx, cur.ID, now)
		if err != nil {
			return domain.ToggleResult{}, err
		}
		if !changed {
			zerolog.Ctx(ctx).Debug().Str("like_id", cur.ID).Msg("like already unliked by a concurrent toggle")
		}
		return domain.ToggleResult{Transition: domain.TransitionUnliked, State: to}, nil
	}

	if from == domain.LikeUnliked {
		changed, err := repo.Reactivate(ctx, tx, cur.ID, now)
		if err != nil {
			return domain.ToggleResult{}, err
		}
		if !changed {
			zerolog.Ctx(ctx).Debug().Str("like_id", cur.ID).Msg("like already reactivated by a concurrent toggle")
		}
		return domain.ToggleResult{Transition: domain.TransitionReactivated, State: to}, nil
	}

	_, inserted, err := repo.InsertLikeIfAbsent(ctx, tx, userID, photoID, now)
	if err != nil {
		return domain.ToggleResult{}, err
	}
	if inserted {
		return domain.ToggleResult{Transition: domain.TransitionCreated, State: to, Created: true}, nil
	}
	// Lost the insert race: settle on the intended target state.
	zerolog.Ctx(ctx).Debug().
		Uint("user_id", userID).
		Uint("photo_id", photoID).
		Msg("like insert conflict, converging on existing row")
	if err := repo.ReactivatePair(ctx, tx, userID, photoID, now); err != nil {
		return domain.ToggleResult{}, err
	}
	return domain.ToggleResult{Transition: domain.TransitionConverged, State: to}, nil
}
