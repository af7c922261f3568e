// Package trace persists per-tick run history as zstd-compressed JSONL, one
// entry per tick, and reads it back for playback and analysis.
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
)

// Entry is one line of a trace file: the snapshot after a tick plus its
// metrics record.
type Entry struct {
	Snapshot core.Snapshot     `json:"snapshot"`
	Record   engine.TickRecord `json:"record"`
}

// FileName is the trace file for a run inside a trace directory.
func FileName(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("run-%s.jsonl.zst", runID))
}

// Writer streams entries to a compressed JSONL file. It implements the
// engine's trace sink. Safe for use from one run at a time; writes are
// serialized.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter creates the trace file, making parent directories as needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Record appends one tick. Satisfies engine.Sink.
func (t *Writer) Record(snap core.Snapshot, rec engine.TickRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return errors.New("trace writer is closed")
	}
	b, err := json.Marshal(Entry{Snapshot: snap, Record: rec})
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Close flushes and closes the file. The trace is not readable until Close.
func (t *Writer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return nil
	}
	var firstErr error
	if err := t.w.Flush(); err != nil {
		firstErr = err
	}
	if err := t.enc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := t.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	t.w = nil
	t.enc = nil
	t.f = nil
	return firstErr
}

// Read loads a whole trace file into memory.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("trace entry %d: %w", len(out), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return out, nil
}
