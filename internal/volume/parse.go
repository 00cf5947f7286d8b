package volume

import (
	"fmt"
	"strings"
)

// ParseMappings parses DEVICE=DRIVE pairs such as
// `\Device\HarddiskVolume3=D:` into a device -> drive table.
func ParseMappings(pairs []string) (map[string]string, error) {
	devices := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 || idx == len(pair)-1 {
			return nil, fmt.Errorf("invalid volume mapping %q: expected DEVICE=DRIVE", pair)
		}
		devices[strings.TrimSpace(pair[:idx])] = strings.TrimSpace(pair[idx+1:])
	}
	return devices, nil
}
