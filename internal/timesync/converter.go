package timesync

import (
	"time"
)

const (
	// epochDelta is the number of FILETIME ticks between 1601-01-01 and 1970-01-01.
	epochDelta int64 = 116444736000000000

	ticksPerSecond int64 = 10_000_000

	// DateTimeLayout is the layout of the human-readable UTC timestamp.
	DateTimeLayout = "2006-01-02 15:04:05 UTC"
)

// FiletimeToUnix converts FILETIME ticks to whole seconds since the Unix epoch.
// Sub-second precision is truncated toward the earlier second.
func FiletimeToUnix(ft int64) int64 {
	d := ft - epochDelta
	sec := d / ticksPerSecond
	if d%ticksPerSecond < 0 {
		sec--
	}
	return sec
}

// FiletimeToTime converts FILETIME ticks to a UTC wall-clock time with full
// 100ns precision.
func FiletimeToTime(ft int64) time.Time {
	d := ft - epochDelta
	sec := d / ticksPerSecond
	rem := d % ticksPerSecond
	if rem < 0 {
		sec--
		rem += ticksPerSecond
	}
	return time.Unix(sec, rem*100).UTC()
}

// UnixToFiletime converts a wall-clock time to FILETIME ticks.
func UnixToFiletime(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100 + epochDelta
}

// FormatUTC renders a FILETIME as DateTimeLayout. It reports false for
// timestamps before the Unix epoch, which trace records never legitimately
// carry.
func FormatUTC(ft int64) (string, bool) {
	if ft < epochDelta {
		return "", false
	}
	return FiletimeToTime(ft).Format(DateTimeLayout), true
}
