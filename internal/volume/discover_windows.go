//go:build windows

package volume

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// queryDosDevice returns the first target of the DOS device name (e.g. "C:").
func queryDosDevice(drive string) (string, error) {
	name, err := windows.UTF16PtrFromString(drive)
	if err != nil {
		return "", err
	}

	buf := make([]uint16, windows.MAX_PATH+1)
	n, err := windows.QueryDosDevice(name, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", fmt.Errorf("query dos device %s: %w", drive, err)
	}
	if n == 0 {
		return "", fmt.Errorf("query dos device %s: empty target", drive)
	}

	// The buffer holds a list of NUL-terminated targets; the first one is
	// the active mapping.
	return windows.UTF16ToString(buf[:n]), nil
}
