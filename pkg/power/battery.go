// Package power reads the device battery level.
package power

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reader reports the battery charge percentage.
type Reader interface {
	Level() (int, error)
}

// SysfsReader reads the battery capacity from /sys/class/power_supply.
type SysfsReader struct {
	basePath string
}

// NewSysfsReader creates a reader over the given power-supply sysfs root,
// normally /sys/class/power_supply.
func NewSysfsReader(basePath string) *SysfsReader {
	return &SysfsReader{basePath: basePath}
}

// Level returns the charge percentage of the first battery found. A device
// without a battery reports 100 (mains powered, never low).
func (r *SysfsReader) Level() (int, error) {
	entries, err := os.ReadDir(r.basePath)
	if err != nil {
		return 100, err
	}

	for _, entry := range entries {
		supply := filepath.Join(r.basePath, entry.Name())

		kind, err := os.ReadFile(filepath.Join(supply, "type"))
		if err != nil || strings.TrimSpace(string(kind)) != "Battery" {
			continue
		}

		capData, err := os.ReadFile(filepath.Join(supply, "capacity"))
		if err != nil {
			continue
		}

		level, err := strconv.Atoi(strings.TrimSpace(string(capData)))
		if err != nil {
			continue
		}

		if level < 0 {
			level = 0
		} else if level > 100 {
			level = 100
		}
		return level, nil
	}

	return 100, nil
}
