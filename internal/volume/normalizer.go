package volume

import (
	"sort"
	"strings"
)

// Mapping pairs a device-form prefix with its drive designation.
type Mapping struct {
	Device string // e.g. \Device\HarddiskVolume3
	Drive  string // e.g. D:
}

// Normalizer replaces known device prefixes with drive designations.
type Normalizer struct {
	// sorted longest device first, then lexicographically
	mappings []Mapping
}

// New builds a Normalizer from a device -> drive table.
// Entries with an empty device are ignored.
func New(devices map[string]string) *Normalizer {
	mappings := make([]Mapping, 0, len(devices))
	for device, drive := range devices {
		if device == "" {
			continue
		}
		mappings = append(mappings, Mapping{Device: device, Drive: drive})
	}

	// Longest prefix first so \Device\HarddiskVolume10 is never rewritten
	// as \Device\HarddiskVolume1 followed by a stray "0".
	sort.Slice(mappings, func(i, j int) bool {
		if len(mappings[i].Device) != len(mappings[j].Device) {
			return len(mappings[i].Device) > len(mappings[j].Device)
		}
		return mappings[i].Device < mappings[j].Device
	})

	return &Normalizer{mappings: mappings}
}

// Normalize replaces the first known device prefix found anywhere in path
// with its drive designation. Only one substitution is made. A path without
// a known prefix is returned unchanged.
func (n *Normalizer) Normalize(path string) string {
	if n == nil {
		return path
	}
	for _, m := range n.mappings {
		if pos := strings.Index(path, m.Device); pos >= 0 {
			return path[:pos] + m.Drive + path[pos+len(m.Device):]
		}
	}
	return path
}

// Mappings returns a copy of the table in matching order.
func (n *Normalizer) Mappings() []Mapping {
	if n == nil {
		return nil
	}
	out := make([]Mapping, len(n.mappings))
	copy(out, n.mappings)
	return out
}

// Len returns the number of known devices.
func (n *Normalizer) Len() int {
	if n == nil {
		return 0
	}
	return len(n.mappings)
}
