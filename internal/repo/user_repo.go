// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
)

// CreateUser inserts a user. A unique violation on username or email is
// returned as ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, username, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// UsernameOrEmailTaken reports whether username (case-insensitively) or
// email is already registered.
func UsernameOrEmailTaken(ctx context.Context, db *gorm.DB, username, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("LOWER(username) = LOWER(?) OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

// FindUserByLogin looks a user up by username (case-insensitively) or by
// email and returns ErrNotFound when neither matches.
func FindUserByLogin(ctx context.Context, db *gorm.DB, username, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) OR email = ?", username, email).
		Order("id ASC").
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
