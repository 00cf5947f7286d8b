// Package tracefile reads recorded kernel file trace records from JSON lines.
//
// Each line holds one record:
//
//	{"id":27,"version":0,"pid":4,"tid":8,"timestamp":133000000000000000,
//	 "fields":{"FilePath":"\\Device\\HarddiskVolume3\\b.txt","FileObject":"0xabcd"}}
//
// Pointer fields accept "0x" hex strings or JSON numbers.
package tracefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mrzor/file-tracer/internal/etw"
)

// Record is one recorded raw trace record. It implements etw.RawRecord.
type Record struct {
	ID        uint16                     `json:"id"`
	Version   uint8                      `json:"version"`
	PID       uint32                     `json:"pid"`
	TID       uint32                     `json:"tid"`
	Timestamp int64                      `json:"timestamp"`
	Values    map[string]json.RawMessage `json:"fields"`
}

// Header returns the common record header.
func (r *Record) Header() etw.RecordHeader {
	return etw.RecordHeader{
		EventID:   r.ID,
		Version:   r.Version,
		ProcessID: r.PID,
		ThreadID:  r.TID,
		Timestamp: r.Timestamp,
	}
}

// Fields returns a parser over the record's named fields.
func (r *Record) Fields() etw.FieldParser {
	return fields(r.Values)
}

type fields map[string]json.RawMessage

// String decodes a JSON string field.
func (f fields) String(name string) (string, error) {
	raw, ok := f[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, etw.ErrFieldNotFound)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", name, etw.ErrFieldType)
	}
	return s, nil
}

// Pointer decodes a "0x" hex string, a decimal string or a JSON number.
func (f fields) Pointer(name string) (uint64, error) {
	raw, ok := f[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, etw.ErrFieldNotFound)
	}
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%s: %w", name, etw.ErrFieldType)
		}
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q: %w", name, s, etw.ErrFieldType)
		}
		return v, nil
	}

	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, etw.ErrFieldType)
	}
	return v, nil
}
