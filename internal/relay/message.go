package relay

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mrzor/file-tracer/internal/etw"
)

// Message is the broker representation of a file event.
type Message struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	DateTime    string `json:"datetime"`
	Timestamp   int64  `json:"timestamp"`
	TimeWindows int64  `json:"time_windows"`
	PID         uint32 `json:"pid"`
	TID         uint32 `json:"tid"`
	Path        string `json:"path,omitempty"`
	OldPath     string `json:"old_path,omitempty"`
	NewPath     string `json:"new_path,omitempty"`
	FileObject  string `json:"file_object,omitempty"`
}

// NewMessage converts ev.
func NewMessage(ev *etw.Event) Message {
	msg := Message{
		EventID:     ev.Header.EventID,
		Kind:        ev.Header.Kind.String(),
		DateTime:    ev.Header.DateTime,
		Timestamp:   ev.Header.UnixTimestamp,
		TimeWindows: ev.Header.WinTimestamp,
		PID:         ev.ProcessID(),
		TID:         ev.Header.Raw.ThreadID,
	}

	if r := ev.RenamePathData(); r != nil {
		msg.OldPath = r.OldFilePath
		msg.NewPath = r.RenamedFilePath
	} else {
		msg.Path, _ = ev.Paths()
	}
	if obj, ok := ev.FileObject(); ok {
		msg.FileObject = fmt.Sprintf("0x%x", obj)
	}
	return msg
}

// Encode returns the JSON encoding of ev.
func Encode(ev *etw.Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("encode: nil event")
	}
	data, err := json.Marshal(NewMessage(ev))
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Header.Kind, err)
	}
	return data, nil
}

// partitionKey groups events by emitting process.
func partitionKey(ev *etw.Event) []byte {
	return strconv.AppendUint(nil, uint64(ev.ProcessID()), 10)
}
