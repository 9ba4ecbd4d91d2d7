package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"cityconquer.ai/internal/scene/assembler"
	"cityconquer.ai/internal/sim/store"
)

// JSONLZstdWriter appends JSON lines to zstd files rotated every UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// Files lists the rotated files of prefix under dir, oldest first.
func Files(dir, prefix string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadJSONLZstd calls fn for every line of a compressed JSONL file. Appended
// sessions show up as concatenated zstd frames, which the decoder reads as one
// stream.
func ReadJSONLZstd(path string, fn func(json.RawMessage) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	for {
		line, err := br.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			if ferr := fn(json.RawMessage(line)); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}

// ActionLogEntry is one line of the action log.
type ActionLogEntry struct {
	RunID  string          `json:"run_id"`
	Seq    uint64          `json:"seq"`
	Turn   int             `json:"turn"`
	At     time.Time       `json:"at"`
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action"`
}

// ActionLogger records dispatched store actions. It satisfies
// store.ActionRecorder.
type ActionLogger struct {
	w   *JSONLZstdWriter
	log *logrus.Entry
}

func NewActionLogger(dataDir string, log *logrus.Entry) *ActionLogger {
	return &ActionLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "actions"), "actions"), log: log}
}

func (l *ActionLogger) WriteAction(r store.ActionRecord) error {
	raw, err := store.EncodeAction(r.Action)
	if err != nil {
		return err
	}
	return l.w.Write(ActionLogEntry{RunID: r.RunID, Seq: r.Seq, Turn: r.Turn, At: r.At, Type: r.Action.Type(), Action: raw})
}

func (l *ActionLogger) RecordAction(r store.ActionRecord) {
	if err := l.WriteAction(r); err != nil && l.log != nil {
		l.log.WithError(err).WithField("seq", r.Seq).Warn("action log write failed")
	}
}

func (l *ActionLogger) Close() error { return l.w.Close() }

// PlacementLogEntry is one line of the placement log.
type PlacementLogEntry struct {
	RunID string `json:"run_id"`
	assembler.Placement
}

// PlacementLogger writes every object an assembly run placed.
type PlacementLogger struct{ w *JSONLZstdWriter }

func NewPlacementLogger(dataDir string) *PlacementLogger {
	return &PlacementLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "placements"), "placements")}
}

func (l *PlacementLogger) WriteRun(res *assembler.Result) error {
	for _, p := range res.Placements {
		if err := l.w.Write(PlacementLogEntry{RunID: res.RunID, Placement: p}); err != nil {
			return err
		}
	}
	return nil
}

func (l *PlacementLogger) Close() error { return l.w.Close() }
