package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
)

// ItemSink routes extracted items to one CSV and one JSONL file per item
// kind under the model directory of the page they came from. It is safe for
// concurrent use.
type ItemSink struct {
	baseDir    string
	maxSizeMB  int
	bufferSize int

	// writers maps model dir -> item kind -> writers
	writers map[string]map[string]*kindWriters
	closed  bool
	mu      sync.RWMutex
}

type kindWriters struct {
	csv   *CSVWriter
	jsonl *JSONLWriter
}

// NewItemSink creates a sink rooted at baseDir.
func NewItemSink(baseDir string, bufferSize int, maxSizeMB int) *ItemSink {
	return &ItemSink{
		baseDir:    baseDir,
		maxSizeMB:  maxSizeMB,
		bufferSize: bufferSize,
		writers:    make(map[string]map[string]*kindWriters),
	}
}

// Write stores items extracted from pageURL.
func (s *ItemSink) Write(pageURL string, items []carexpert.Item) error {
	dir := ModelDir(s.baseDir, pageURL)

	var errs []error
	for _, item := range items {
		kw, err := s.writer(dir, item.Kind())
		if err != nil {
			return err
		}
		if err := kw.csv.Write(item); err != nil {
			errs = append(errs, err)
		}
		if err := kw.jsonl.Write(item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dir returns the directory items from pageURL are written to.
func (s *ItemSink) Dir(pageURL string) string {
	return ModelDir(s.baseDir, pageURL)
}

func (s *ItemSink) writer(dir, kind string) (*kindWriters, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("item sink is closed")
	}
	if kw, ok := s.writers[dir][kind]; ok {
		s.mu.RUnlock()
		return kw, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.closed {
		return nil, fmt.Errorf("item sink is closed")
	}
	if kw, ok := s.writers[dir][kind]; ok {
		return kw, nil
	}
	if s.writers[dir] == nil {
		s.writers[dir] = make(map[string]*kindWriters)
	}

	kw := &kindWriters{
		csv:   NewCSVWriter(filepath.Join(dir, kind+".csv")),
		jsonl: NewJSONLWriter(filepath.Join(dir, kind+".jsonl"), s.bufferSize, s.maxSizeMB),
	}
	s.writers[dir][kind] = kw

	slog.Info("Created item writers", "dir", dir, "kind", kind)
	return kw, nil
}

// Counts returns CSV rows written per kind across all model directories.
func (s *ItemSink) Counts() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, kinds := range s.writers {
		for kind, kw := range kinds {
			out[kind] += kw.csv.Rows()
		}
	}
	return out
}

// Close flushes and closes every writer. Later writes fail.
func (s *ItemSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for dir, kinds := range s.writers {
		for kind, kw := range kinds {
			if err := kw.csv.Close(); err != nil {
				slog.Error("Failed to close csv writer", "dir", dir, "kind", kind, "error", err)
				lastErr = err
			}
			if err := kw.jsonl.Close(); err != nil {
				slog.Error("Failed to close jsonl writer", "dir", dir, "kind", kind, "error", err)
				lastErr = err
			}
		}
	}
	s.writers = make(map[string]map[string]*kindWriters)
	s.closed = true
	return lastErr
}
