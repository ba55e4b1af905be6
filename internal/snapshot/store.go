// Package snapshot keeps raw page HTML captured before parsing so selector
// breakage can be diagnosed offline.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/sawari_expert/internal/storage"
)

// Errors returned for bad or unknown ids.
var (
	ErrInvalidID = errors.New("invalid snapshot id")
	ErrNotFound  = errors.New("snapshot not found")
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SnapshotMeta describes stored snapshot metadata.
type SnapshotMeta struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	Slug      string    `json:"slug,omitempty"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages snapshot files on disk.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) validateID(id string) error {
	if !uuidRe.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// SaveHTML stores html captured from pageURL under a new id.
func (s *Store) SaveHTML(label, pageURL, html string) (string, error) {
	slug, err := storage.TransformURLToPathSegment(pageURL)
	if err != nil {
		slog.Debug("snapshot url not parseable", "url", pageURL, "error", err)
	}
	meta := SnapshotMeta{
		ID:        uuid.NewString(),
		Label:     label,
		URL:       pageURL,
		Slug:      slug,
		SizeBytes: len(html),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Save(meta, []byte(html)); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// Save writes both the html file and metadata sidecar.
func (s *Store) Save(meta SnapshotMeta, html []byte) error {
	if err := s.validateID(meta.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	htmlPath := filepath.Join(s.dir, meta.ID+".html")
	jsonPath := filepath.Join(s.dir, meta.ID+".json")

	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return fmt.Errorf("snapshot store: write html: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.Remove(htmlPath)
		return fmt.Errorf("snapshot store: marshal meta: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		_ = os.Remove(htmlPath)
		return fmt.Errorf("snapshot store: write meta: %w", err)
	}

	return nil
}

// Get reads snapshot metadata by ID.
func (s *Store) Get(id string) (SnapshotMeta, error) {
	if err := s.validateID(id); err != nil {
		return SnapshotMeta{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotMeta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return SnapshotMeta{}, fmt.Errorf("snapshot store: read meta: %w", err)
	}

	var meta SnapshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return SnapshotMeta{}, fmt.Errorf("snapshot store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns all snapshots sorted by creation time (newest first).
func (s *Store) List() ([]SnapshotMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: glob: %w", err)
	}

	metas := make([]SnapshotMeta, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("skipping unreadable snapshot meta", "path", path, "error", err)
			continue
		}
		var meta SnapshotMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("skipping corrupt snapshot meta", "path", path, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})

	return metas, nil
}

// ReadHTML returns the stored page.
func (s *Store) ReadHTML(id string) ([]byte, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, id+".html"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: html for %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("snapshot store: read html: %w", err)
	}
	return data, nil
}

// Delete removes both the html and metadata files.
func (s *Store) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, id+".html")); err != nil {
		slog.Debug("snapshot html cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(filepath.Join(s.dir, id+".json")); err != nil {
		return fmt.Errorf("snapshot store: remove meta: %w", err)
	}
	return nil
}
