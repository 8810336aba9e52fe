package location

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// DeviceSensorProvider retrieves location data from a GPS device connected
// via serial port.
type DeviceSensorProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with
// the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:     port,
		baudRate: baudRate,
	}
}

// Authorize checks that the GPS device is present and readable. A missing or
// inaccessible device maps to ErrPermissionDenied so the watcher can report a
// permission-denied condition instead of retrying forever.
func (d *DeviceSensorProvider) Authorize() error {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, d.port)
		}
		return err
	}
	return s.Close()
}

// GetLocation reads GPS data from the device and returns the device's location.
func (d *DeviceSensorProvider) GetLocation() (Location, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Location{}, err
	}
	defer s.Close()

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "$GPGGA") { // Only GGA sentences carry a fix
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			return Location{}, err
		}

		if gga, ok := sentence.(nmea.GGA); ok {
			return Location{
				Latitude:  gga.Latitude,
				Longitude: gga.Longitude,
				Accuracy:  float64(gga.HDOP), // HDOP as a proxy for accuracy
			}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Location{}, err
	}

	return Location{}, errors.New("no valid GPS data found")
}

// Close releases the provider. The serial port is opened per read, so there
// is nothing to tear down.
func (d *DeviceSensorProvider) Close() error {
	return nil
}
