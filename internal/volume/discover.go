package volume

import "go.uber.org/zap"

// Discover queries every drive letter A-Z for its device mapping and builds
// a Normalizer from the letters that resolved. On platforms without DOS
// devices the table is empty and Normalize is the identity.
func Discover(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	devices := make(map[string]string)
	for letter := 'A'; letter <= 'Z'; letter++ {
		drive := string(letter) + ":"
		device, err := queryDosDevice(drive)
		if err != nil {
			continue
		}
		devices[device] = drive
		logger.Debug("Resolved drive device", zap.String("drive", drive), zap.String("device", device))
	}

	logger.Info("Volume table built", zap.Int("drives", len(devices)))
	return New(devices)
}
