package motion

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IIOProvider reads acceleration from a Linux industrial I/O accelerometer
// exposed under /sys/bus/iio/devices/iio:deviceN.
type IIOProvider struct {
	devicePath string
	scale      float64
}

// NewIIOProvider creates a provider for the accelerometer at devicePath
// (e.g. /sys/bus/iio/devices/iio:device0). The device's scale file converts
// raw counts to m/s^2; readings are normalized to g.
func NewIIOProvider(devicePath string) (*IIOProvider, error) {
	scale, err := readSysfsFloat(filepath.Join(devicePath, "in_accel_scale"))
	if err != nil {
		return nil, fmt.Errorf("accelerometer not available at %s: %w", devicePath, err)
	}

	return &IIOProvider{
		devicePath: devicePath,
		scale:      scale,
	}, nil
}

// Read returns the current acceleration along all three axes.
func (p *IIOProvider) Read() (Sample, error) {
	const gravity = 9.80665

	var raw [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		v, err := readSysfsFloat(filepath.Join(p.devicePath, "in_accel_"+axis+"_raw"))
		if err != nil {
			return Sample{}, err
		}
		raw[i] = v
	}

	return Sample{
		X: raw[0] * p.scale / gravity,
		Y: raw[1] * p.scale / gravity,
		Z: raw[2] * p.scale / gravity,
	}, nil
}

// Close releases the provider. Sysfs files are opened per read.
func (p *IIOProvider) Close() error {
	return nil
}

func readSysfsFloat(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}
