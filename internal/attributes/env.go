package attributes

import (
	"github.com/mrzor/file-tracer/internal/etw"
)

// exampleEnv fixes the variable types expressions are checked against.
var exampleEnv = map[string]any{
	"kind":        "",
	"pid":         0,
	"tid":         0,
	"path":        "",
	"new_path":    "",
	"old_path":    "",
	"file_object": uint64(0),
	"time":        int64(0),
	"datetime":    "",
	"event_id":    "",
}

// Env returns the expression environment for ev. For renames path is the
// correlated old path, as in the events table.
func Env(ev *etw.Event) map[string]any {
	path, newPath := ev.Paths()
	obj, _ := ev.FileObject()

	var oldPath string
	if r := ev.RenamePathData(); r != nil {
		oldPath = r.OldFilePath
	}

	return map[string]any{
		"kind":        ev.Header.Kind.String(),
		"pid":         int(ev.ProcessID()),
		"tid":         int(ev.Header.Raw.ThreadID),
		"path":        path,
		"new_path":    newPath,
		"old_path":    oldPath,
		"file_object": obj,
		"time":        ev.Header.UnixTimestamp,
		"datetime":    ev.Header.DateTime,
		"event_id":    ev.Header.EventID,
	}
}
