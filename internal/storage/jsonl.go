package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// JSONLWriter appends JSON lines to one file from a background goroutine.
// Files rotate through lumberjack once they reach maxSizeMB.
type JSONLWriter struct {
	path      string
	maxSizeMB int
	writeCh   chan any
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *lumberjack.Logger
	mu        sync.Mutex
	written   int64
}

// NewJSONLWriter creates an async writer for path. The parent directory is
// created on first write.
func NewJSONLWriter(path string, bufferSize int, maxSizeMB int) *JSONLWriter {
	if bufferSize < 1 {
		bufferSize = 1
	}
	w := &JSONLWriter{
		path:      path,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan any, bufferSize),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Write queues a record. It blocks while the buffer is full; scraped items
// are never dropped.
func (w *JSONLWriter) Write(record any) error {
	select {
	case <-w.done:
		return fmt.Errorf("writer is closed")
	default:
	}
	select {
	case w.writeCh <- record:
		return nil
	case <-w.done:
		return fmt.Errorf("writer is closed")
	}
}

// Written returns how many records reached the file.
func (w *JSONLWriter) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close stops the writer and flushes pending records.
func (w *JSONLWriter) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	// Drain remaining items with timeout
	timeout := time.After(5 * time.Second)
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-timeout:
			slog.Warn("JSONL writer close timeout, some records may be lost", "file", w.path)
			goto done
		default:
			goto done
		}
	}

done:
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *JSONLWriter) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-w.done:
			return
		}
	}
}

func (w *JSONLWriter) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("Failed to marshal record", "error", err, "file", w.path)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.logger == nil && !w.open() {
		return
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("Failed to write record", "error", err, "file", w.path)
		return
	}
	w.written++
}

// open prepares the lumberjack logger. Caller holds mu.
func (w *JSONLWriter) open() bool {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		slog.Error("Failed to create output directory", "error", err, "file", w.path)
		return false
	}
	w.logger = &lumberjack.Logger{
		Filename:   w.path,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
		Compress:   false,
		LocalTime:  false,
	}
	slog.Info("Opened JSONL file", "file", w.path)
	return true
}
