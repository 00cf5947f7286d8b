package etw

import "errors"

var (
	// ErrFieldNotFound is returned by a FieldParser when the record has no field with that name.
	ErrFieldNotFound = errors.New("field not found")
	// ErrFieldType is returned by a FieldParser when the field exists with another type.
	ErrFieldType = errors.New("field has unexpected type")
)

// RecordHeader is the fixed part of a raw trace record.
type RecordHeader struct {
	EventID   uint16
	Version   uint8
	ProcessID uint32
	ThreadID  uint32
	Timestamp int64 // FILETIME: 100ns ticks since 1601-01-01 UTC
}

// FieldParser reads provider-specific fields by name and expected type.
type FieldParser interface {
	String(name string) (string, error)
	Pointer(name string) (uint64, error)
}

// RawRecord is one record delivered by the trace subsystem.
// It is only valid for the duration of the callback that received it.
type RawRecord interface {
	Header() RecordHeader
	Fields() FieldParser
}
