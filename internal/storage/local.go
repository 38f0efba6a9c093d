// Package storage persists uploaded media on the local filesystem.
//
// Files are stored under a configured base directory, grouped by owner kind
// and upload date. The returned key is what the media table records; the
// public URL is derived from it on the way out.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oshxona/go-food-backend/internal/config"
)

// LocalStore writes media files under a base directory and serves them from
// a base URL.
type LocalStore struct {
	basePath string
	baseURL  string
	maxBytes int64
	log      zerolog.Logger
}

// ErrTooLarge is returned by Save when the payload exceeds the configured
// upload limit.
var ErrTooLarge = fmt.Errorf("file exceeds upload size limit")

// ErrUnsupportedType is returned by Save for file extensions outside the
// image allow list.
var ErrUnsupportedType = fmt.Errorf("unsupported file type")

// NewLocalStore prepares the storage directory and returns a store.
func NewLocalStore(cfg config.MediaConfig, log zerolog.Logger) (*LocalStore, error) {
	logger := log.With().Str("component", "media-storage").Logger()

	basePath := strings.TrimSpace(cfg.StoragePath)
	if basePath == "" {
		return nil, fmt.Errorf("media storage path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create media storage directory: %w", err)
	}

	s := &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
		maxBytes: int64(cfg.MaxUploadMB) << 20,
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", s.baseURL).
		Msg("media storage initialized")

	return s, nil
}

// Save streams one uploaded file to disk and returns its storage key.
// The key embeds the owner kind, the upload date, and a random name so
// concurrent uploads never collide.
func (s *LocalStore) Save(ctx context.Context, ownerKind, originalFilename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ContentTypeFor(ext) == "" {
		return "", ErrUnsupportedType
	}

	key := fmt.Sprintf("%s/%s/%s%s",
		ownerKind,
		time.Now().UTC().Format("2006/01/02"),
		uuid.NewString(),
		ext,
	)

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if written > limit {
		_ = os.Remove(fullPath)
		return "", ErrTooLarge
	}

	s.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("media file stored")

	return key, nil
}

// Remove deletes a stored file. Missing files are not an error so that
// callers can treat removal as idempotent.
func (s *LocalStore) Remove(ctx context.Context, key string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// URL returns the public URL for a storage key.
func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + filepath.ToSlash(key)
}

// BasePath exposes the storage root so the router can mount a static
// file handler over it.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

// Health verifies the storage directory is writable.
func (s *LocalStore) Health(ctx context.Context) error {
	probe := filepath.Join(s.basePath, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("media storage not writable: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}

// ContentTypeFor maps an image extension to its MIME type. Empty for
// anything outside the allow list.
func ContentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
