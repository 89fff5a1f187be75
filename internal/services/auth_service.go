// Package services – AuthService
//
// This file implements registration and login. Passwords are stored as
// bcrypt hashes; a successful login returns a signed bearer token carrying
// the user's id and username. Emails are case-folded before storage and
// lookup, usernames are matched case-insensitively.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/auth"
	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/repo"
)

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	DB     *gorm.DB
	Tokens *auth.Tokens

	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int

	// Timeout bounds each storage call. Hashing is not counted.
	Timeout time.Duration
}

var emailFold = cases.Lower(language.Und)

func normalizeEmail(s string) string {
	return emailFold.String(strings.TrimSpace(s))
}

// Register creates an account. All three fields are required.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	qctx, cancel := bounded(ctx, s.Timeout)
	taken, err := repo.UsernameOrEmailTaken(qctx, s.DB, username, email)
	cancel()
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	qctx, cancel = bounded(ctx, s.Timeout)
	defer cancel()
	u, err := repo.CreateUser(qctx, s.DB, username, email, string(hash))
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrUserExists
	}
	return u, err
}

// Login verifies the credentials and returns a token for the user. The
// login may be either the username or the email.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	qctx, cancel := bounded(ctx, s.Timeout)
	u, err := repo.FindUserByLogin(qctx, s.DB, login, normalizeEmail(login))
	cancel()
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID, u.Username)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
