package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"dungeonsync.gg/internal/session"
)

// JSONLZstdWriter appends JSON lines to an hourly-rotated zstd stream.
// Safe for concurrent use; each line is flushed so a crash loses at most
// the entry being written.
type JSONLZstdWriter struct {
	dir  string
	name string

	mu   sync.Mutex
	hour string
	file *os.File
	enc  *zstd.Encoder
	buf  *bufio.Writer
}

func NewJSONLZstdWriter(dir, name string) *JSONLZstdWriter {
	return &JSONLZstdWriter{dir: dir, name: name}
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.hour {
		if err := w.openLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// openLocked finishes the current segment and starts the one for hour.
func (w *JSONLZstdWriter) openLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.name, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	w.enc = enc
	w.buf = bufio.NewWriterSize(enc, 128*1024)
	w.hour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	if w.file == nil {
		return nil
	}
	_ = w.buf.Flush()
	err := w.enc.Close()
	_ = w.file.Close()
	w.file, w.enc, w.buf = nil, nil, nil
	return err
}

// EventLogger writes one JSONL entry per dispatched message (compressed).
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(dataDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "events"), "events")}
}

func (l *EventLogger) WriteEvent(v session.EventEntry) error { return l.w.Write(v) }
func (l *EventLogger) Close() error                          { return l.w.Close() }

// RollLogger writes roll lifecycle JSONL entries (compressed).
type RollLogger struct{ w *JSONLZstdWriter }

func NewRollLogger(dataDir string) *RollLogger {
	return &RollLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "rolls"), "rolls")}
}

func (l *RollLogger) WriteRoll(v session.RollEntry) error { return l.w.Write(v) }
func (l *RollLogger) Close() error                        { return l.w.Close() }
