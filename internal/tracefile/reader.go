package tracefile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mrzor/file-tracer/internal/etw"
)

const maxLineSize = 1 << 20

// Reader decodes records line by line. Blank lines and lines starting with
// '#' are ignored; malformed lines are logged and skipped.
type Reader struct {
	scanner *bufio.Scanner
	logger  *zap.Logger
	line    int
	skipped int
}

// NewReader creates a reader on r.
func NewReader(r io.Reader, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{
		scanner: scanner,
		logger:  logger.Named("tracefile"),
	}
}

// Next returns the next record, or io.EOF.
func (r *Reader) Next() (*Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			r.skipped++
			r.logger.Warn("Skipping malformed record", zap.Int("line", r.line), zap.Error(err))
			continue
		}
		return &rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Skipped returns the number of malformed lines seen so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Stats summarizes a replay.
type Stats struct {
	Records  int
	Accepted int
	Skipped  int
}

// Replay feeds every record from r to submit until EOF or ctx is done.
// submit reports whether the record was accepted.
func Replay(ctx context.Context, r io.Reader, submit func(etw.RawRecord) bool, logger *zap.Logger) (Stats, error) {
	reader := NewReader(r, logger)

	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			stats.Skipped = reader.Skipped()
			return stats, err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Skipped = reader.Skipped()
			return stats, err
		}

		stats.Records++
		if submit(rec) {
			stats.Accepted++
		}
	}

	stats.Skipped = reader.Skipped()
	return stats, nil
}

// ReplayFile opens path and replays it.
func ReplayFile(ctx context.Context, path string, submit func(etw.RawRecord) bool, logger *zap.Logger) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	stats, err := Replay(ctx, f, submit, logger)
	if err != nil {
		return stats, fmt.Errorf("replay %s: %w", path, err)
	}
	return stats, nil
}
