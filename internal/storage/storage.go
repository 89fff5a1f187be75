// Package storage persists uploaded photo blobs. Two backends exist: a local
// directory served statically under /uploads, and an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO) whose objects are addressed by public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-gallery-backend/internal/config"
)

// BlobStore stores and removes photo blobs.
type BlobStore interface {
	// Put writes r under name and returns the value to persist as the
	// photo's image_url.
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
	// Delete removes the blob stored under name. Missing blobs are not an error.
	Delete(ctx context.Context, name string) error
}

// New builds the BlobStore selected by cfg.Driver.
func New(cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(cfg.S3), nil
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectName returns a collision-resistant blob name that keeps the
// original file extension, e.g. "1718000000000-3f2a9c1b.jpg".
func ObjectName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString()[:8], ext)
}
