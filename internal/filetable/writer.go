package filetable

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// RowWriter stores table rows.
type RowWriter interface {
	WriteRows(rows []Row) error
}

// JSONLWriter writes one JSON object per row.
type JSONLWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLWriter creates a writer on w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc}
}

// WriteRows encodes rows in order, stopping at the first error.
func (w *JSONLWriter) WriteRows(rows []Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range rows {
		if err := w.enc.Encode(&rows[i]); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// MemoryWriter keeps the newest rows in memory, up to a fixed limit.
type MemoryWriter struct {
	mu    sync.Mutex
	limit int
	rows  []Row
}

// NewMemoryWriter creates a writer holding at most limit rows. A
// non-positive limit keeps every row.
func NewMemoryWriter(limit int) *MemoryWriter {
	return &MemoryWriter{limit: limit}
}

// WriteRows appends rows, discarding the oldest beyond the limit.
func (w *MemoryWriter) WriteRows(rows []Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rows = append(w.rows, rows...)
	if w.limit > 0 && len(w.rows) > w.limit {
		w.rows = append([]Row(nil), w.rows[len(w.rows)-w.limit:]...)
	}
	return nil
}

// Rows returns a copy of the stored rows, oldest first.
func (w *MemoryWriter) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Row(nil), w.rows...)
}
