// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers consume and the
// Handlers type that groups every endpoint:
//
//   - POST   /register, /login          (accounts)
//   - POST   /upload, GET /photos       (photos and the feed)
//   - POST   /like                      (like ledger)
//   - POST   /comments, GET /comments/{photoId}, DELETE /comments/{id}
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results or sentinel errors into HTTP responses.
package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/http/middleware"
	"github.com/tbourn/go-gallery-backend/internal/repo"
)

//
// Service contracts (context-aware)
//

// AuthService registers accounts and issues tokens.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login accepts a username or an email and returns a signed token.
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
}

// PhotoService stores uploaded images.
type PhotoService interface {
	Upload(ctx context.Context, userID uint, filename string, r io.Reader, size int64) (*domain.Photo, error)
}

// FeedService lists photos with per-viewer statistics.
type FeedService interface {
	GetFeed(ctx context.Context, viewerID uint) ([]domain.FeedItem, error)
	// Fingerprint returns a cheap aggregate that changes whenever the feed
	// would; it backs the feed's ETag.
	Fingerprint(ctx context.Context, viewerID uint) (repo.FeedStats, error)
}

// LikeService flips the like state of a (user, photo) pair.
type LikeService interface {
	Toggle(ctx context.Context, userID, photoID uint) (domain.ToggleResult, error)
}

// CommentService manages photo comments.
type CommentService interface {
	Create(ctx context.Context, userID, photoID uint, body string) (*domain.Comment, error)
	List(ctx context.Context, photoID uint) ([]domain.CommentWithAuthor, error)
	Delete(ctx context.Context, userID, commentID uint) error
}

//
// Handler wiring
//

// Handlers groups the gallery's HTTP endpoints. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	authSvc    AuthService
	photoSvc   PhotoService
	feedSvc    FeedService
	likeSvc    LikeService
	commentSvc CommentService

	// MaxUploadBytes caps multipart upload bodies; <= 0 disables the cap.
	MaxUploadBytes int64
}

// New constructs and returns a Handlers instance bound to the given services.
func New(authSvc AuthService, photoSvc PhotoService, feedSvc FeedService, likeSvc LikeService, commentSvc CommentService) *Handlers {
	return &Handlers{
		authSvc:    authSvc,
		photoSvc:   photoSvc,
		feedSvc:    feedSvc,
		likeSvc:    likeSvc,
		commentSvc: commentSvc,
	}
}

// currentUser returns the caller authenticated by middleware.RequireAuth.
// Routes that need it are mounted behind RequireAuth, so a miss is a wiring
// error and answered with 401.
func currentUser(c *gin.Context) (uint, bool) {
	uid, found := middleware.UserID(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	}
	return uid, found
}
