//go:build !windows

package volume

import "errors"

var errNoDosDevices = errors.New("dos devices are not available on this platform")

func queryDosDevice(string) (string, error) {
	return "", errNoDosDevices
}
