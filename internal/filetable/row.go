package filetable

import (
	"errors"
	"fmt"

	"github.com/mrzor/file-tracer/internal/etw"
)

// ErrInvalidPayload is returned for events whose payload does not match
// their kind.
var ErrInvalidPayload = errors.New("invalid event payload")

// Row is one entry of the file events table.
type Row struct {
	Type        string `json:"type"`
	DateTime    int64  `json:"datetime"`
	TimeWindows int64  `json:"time_windows"`
	PID         int64  `json:"pid"`
	Path        string `json:"path"`
	NewPath     string `json:"new_path,omitempty"`
}

// FromEvent converts ev to a row. It reports false for kinds that have no
// row (Create, process events).
func FromEvent(ev *etw.Event) (Row, bool, error) {
	if ev == nil {
		return Row{}, false, fmt.Errorf("nil event: %w", ErrInvalidPayload)
	}

	row := Row{
		Type:        ev.Header.TypeInfo,
		DateTime:    ev.Header.UnixTimestamp,
		TimeWindows: ev.Header.WinTimestamp,
		PID:         int64(ev.ProcessID()),
	}

	switch ev.Header.Kind {
	case etw.KindCreateNewFile:
		p := ev.CreateNewFileData()
		if p == nil {
			return Row{}, false, fmt.Errorf("%s: %w", ev.Header.Kind, ErrInvalidPayload)
		}
		row.Path = p.FileName

	case etw.KindNameDelete:
		p := ev.NameDeleteData()
		if p == nil {
			return Row{}, false, fmt.Errorf("%s: %w", ev.Header.Kind, ErrInvalidPayload)
		}
		row.Path = p.FileName

	case etw.KindRenamePath:
		p := ev.RenamePathData()
		if p == nil {
			return Row{}, false, fmt.Errorf("%s: %w", ev.Header.Kind, ErrInvalidPayload)
		}
		row.Path = p.OldFilePath
		row.NewPath = p.RenamedFilePath

	case etw.KindDeletePath:
		p := ev.DeletePathData()
		if p == nil {
			return Row{}, false, fmt.Errorf("%s: %w", ev.Header.Kind, ErrInvalidPayload)
		}
		row.Path = p.FilePath

	default:
		return Row{}, false, nil
	}

	if row.Type == "" {
		row.Type = ev.Header.Kind.String()
	}
	return row, true, nil
}
