// Package services defines the business logic for the gallery: the like
// ledger, the photo feed projection, accounts, uploads and comments. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Like ledger errors.
var (
	// ErrPhotoIDRequired is returned when a toggle names no photo.
	ErrPhotoIDRequired = errors.New("photoId is required")

	// ErrPhotoNotFound is returned when photo existence checking is enabled
	// and the photo does not exist.
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrLockTimeout is returned when the per-pair lock could not be taken
	// before the deadline.
	ErrLockTimeout = errors.New("like lock timeout")
)

// Account errors.
var (
	// ErrMissingFields is returned when a required request field is blank.
	ErrMissingFields = errors.New("all fields are required")

	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = errors.New("email or username already registered")

	// ErrInvalidCredentials covers both an unknown account and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Comment and upload errors.
var (
	// ErrEmptyComment is returned when a comment body or photo id is missing.
	ErrEmptyComment = errors.New("comment and photoId are required")

	// ErrCommentForbidden is returned when the caller does not own the comment
	// (or it does not exist).
	ErrCommentForbidden = errors.New("not allowed to delete this comment")

	// ErrInvalidImage is returned when an upload is missing or is not an image.
	ErrInvalidImage = errors.New("image not found or not an image")
)
