// Package services – CommentService
//
// This file implements comment creation, listing and owner-only deletion.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/repo"
)

// CommentService manages comments on photos.
type CommentService struct {
	DB *gorm.DB
	// Timeout bounds each call. Zero disables it.
	Timeout time.Duration
}

// Create adds a comment by userID on photoID.
func (s *CommentService) Create(ctx context.Context, userID, photoID uint, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if photoID == 0 || body == "" {
		return nil, ErrEmptyComment
	}
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	return repo.CreateComment(ctx, s.DB, userID, photoID, body)
}

// List returns a photo's comments newest first.
func (s *CommentService) List(ctx context.Context, photoID uint) ([]domain.CommentWithAuthor, error) {
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	return repo.ListCommentsByPhoto(ctx, s.DB, photoID)
}

// Delete removes commentID if userID owns it. A missing comment and a
// comment owned by someone else both yield ErrCommentForbidden.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	ctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	ok, err := repo.DeleteComment(ctx, s.DB, commentID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCommentForbidden
	}
	return nil
}
