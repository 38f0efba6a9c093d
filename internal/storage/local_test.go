package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oshxona/go-food-backend/internal/config"
)

func newTestStore(t *testing.T, maxMB int) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(config.MediaConfig{
		StoragePath: t.TempDir(),
		BaseURL:     "http://localhost:8080/media/",
		MaxUploadMB: maxMB,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestLocalStore_SaveAndURL(t *testing.T) {
	s := newTestStore(t, 5)
	ctx := context.Background()

	key, err := s.Save(ctx, "product", "burger.JPG", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "product/") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %q", key)
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Fatalf("stored content = %q", data)
	}

	url := s.URL(key)
	if url != "http://localhost:8080/media/"+key {
		t.Fatalf("URL = %q", url)
	}
	if s.URL("") != "" {
		t.Fatal("empty key must give empty URL")
	}
}

func TestLocalStore_RejectsUnsupportedExtension(t *testing.T) {
	s := newTestStore(t, 5)

	if _, err := s.Save(context.Background(), "story", "payload.exe", strings.NewReader("x")); err != ErrUnsupportedType {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestLocalStore_RejectsOversizedFile(t *testing.T) {
	s := newTestStore(t, 1)

	big := strings.NewReader(strings.Repeat("a", (1<<20)+1))
	if _, err := s.Save(context.Background(), "recipe", "huge.png", big); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	// Nothing should remain on disk after a rejected upload.
	var leftover []string
	_ = filepath.Walk(s.BasePath(), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			leftover = append(leftover, path)
		}
		return nil
	})
	if len(leftover) != 0 {
		t.Fatalf("leftover files after rejected upload: %v", leftover)
	}
}

func TestLocalStore_RemoveIsIdempotent(t *testing.T) {
	s := newTestStore(t, 5)
	ctx := context.Background()

	key, err := s.Save(ctx, "product", "a.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Remove(ctx, key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, key); err != nil {
		t.Fatalf("second Remove must be a no-op: %v", err)
	}
}

func TestLocalStore_Health(t *testing.T) {
	s := newTestStore(t, 5)
	if err := s.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
