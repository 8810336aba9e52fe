package identity

import (
	"os"

	"github.com/google/uuid"

	"github.com/safetrail/sentinel-agent/pkg/file"
)

// Identity holds the device's unique identifier and other metadata.
type Identity struct {
	ID    string `json:"device_id,omitempty"`
	Name  string `json:"device_name,omitempty"`
	OrgID string `json:"org_id,omitempty"`
}

// DeviceInfoInterface defines methods for managing device identity.
type DeviceInfoInterface interface {
	LoadDeviceInfo() error
	GetDeviceID() string
	GetDeviceIdentity() *Identity
}

// DeviceInfo manages the device identity and its associated file operations.
type DeviceInfo struct {
	DeviceInfoFile string
	Identity       Identity
	fileOps        file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) DeviceInfoInterface {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
		Identity:       Identity{},
	}
}

// LoadDeviceInfo reads the device information from the file and populates the
// Identity field. A missing file gets a freshly generated device id so a new
// device can start reporting without manual provisioning.
func (d *DeviceInfo) LoadDeviceInfo() error {
	err := d.fileOps.ReadJsonFile(d.DeviceInfoFile, &d.Identity)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if d.Identity.ID == "" {
		d.Identity.ID = uuid.New().String()
		if err := d.fileOps.WriteJsonFile(d.DeviceInfoFile, &d.Identity); err != nil {
			return err
		}
	}

	return nil
}

// GetDeviceID returns the device's unique identifier.
func (d *DeviceInfo) GetDeviceID() string {
	return d.Identity.ID
}

// GetDeviceIdentity returns the current device Identity.
func (d *DeviceInfo) GetDeviceIdentity() *Identity {
	return &d.Identity
}
