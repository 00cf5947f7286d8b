package eventstream

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrzor/file-tracer/internal/etw"
	"github.com/mrzor/file-tracer/internal/timesync"
)

// ErrTimestampBeforeEpoch is returned by Enrich for records stamped before
// 1970-01-01.
var ErrTimestampBeforeEpoch = errors.New("timestamp before unix epoch")

// Enrich fills the header fields shared by every event kind from the raw
// record header.
func Enrich(ev *etw.Event) error {
	ft := ev.Header.Raw.Timestamp

	dt, ok := timesync.FormatUTC(ft)
	if !ok {
		return fmt.Errorf("filetime %d: %w", ft, ErrTimestampBeforeEpoch)
	}

	ev.Header.WinTimestamp = ft
	ev.Header.UnixTimestamp = timesync.FiletimeToUnix(ft)
	ev.Header.DateTime = dt
	ev.Header.TypeInfo = ev.Header.Kind.String()
	ev.Header.EventID = uuid.NewString()
	return nil
}
