// Package services – PhotoService
//
// This file implements photo upload: the blob is sniffed to make sure it is
// an image, written to the configured BlobStore, then recorded in the
// photos table. If the insert fails the blob is removed again.
package services

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/repo"
	"github.com/tbourn/go-gallery-backend/internal/storage"
)

// PhotoService stores uploaded photos.
type PhotoService struct {
	DB    *gorm.DB
	Blobs storage.BlobStore

	// Timeout bounds the photo insert. The blob write runs under the
	// request context only.
	Timeout time.Duration
}

// Upload stores r as a new photo owned by userID. filename only contributes
// its extension to the stored name.
func (s *PhotoService) Upload(ctx context.Context, userID uint, filename string, r io.Reader, size int64) (*domain.Photo, error) {
	if r == nil {
		return nil, ErrInvalidImage
	}
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if len(head) == 0 {
		return nil, ErrInvalidImage
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImage
	}

	name := storage.ObjectName(filename, time.Now())
	url, err := s.Blobs.Put(ctx, name, contentType, br, size)
	if err != nil {
		return nil, err
	}

	qctx, cancel := bounded(ctx, s.Timeout)
	defer cancel()
	p, err := repo.CreatePhoto(qctx, s.DB, userID, url)
	if err != nil {
		if derr := s.Blobs.Delete(ctx, name); derr != nil {
			zerolog.Ctx(ctx).Warn().Err(derr).Str("blob", name).Msg("orphaned blob after failed insert")
		}
		return nil, err
	}
	return p, nil
}
