package utils

import (
	"time"

	"github.com/safetrail/sentinel-agent/pkg/file"
)

// Config represents the structure of the configuration file. Every cadence
// and threshold lives here so deployments (and tests) can tune them without
// rebuilding the agent.
type Config struct {
	Server struct {
		BaseURL        string        `yaml:"base_url"`         // Ingestion/scoring service base URL
		ServiceKeyFile string        `yaml:"service_key_file"` // Path to the shared service key used for request signing
		Timeout        time.Duration `yaml:"timeout"`          // Per-request timeout for dispatches
	} `yaml:"server"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	GeofenceRegistry struct {
		Backend    string        `yaml:"backend"`      // "http" or "sqlite"
		BaseURL    string        `yaml:"base_url"`     // Data store base URL (http backend)
		APIKeyFile string        `yaml:"api_key_file"` // Path to the data store API key (http backend)
		SQLitePath string        `yaml:"sqlite_path"`  // Path to the local mirror (sqlite backend)
		Timeout    time.Duration `yaml:"timeout"`      // Fetch timeout per assessment cycle
	} `yaml:"geofence_registry"`

	Services struct {
		Ping struct {
			Enabled  bool          `yaml:"enabled"`  // Enable/disable ping service
			Interval time.Duration `yaml:"interval"` // Interval between pings
		} `yaml:"ping"`

		Location struct {
			Enabled           bool          `yaml:"enabled"`         // Enable/disable location watcher
			Interval          time.Duration `yaml:"interval"`        // Interval between location fixes
			SensorBased       bool          `yaml:"sensor_based"`    // Use GPS sensor instead of geolocation API
			MapsAPIKey        string        `yaml:"maps_api_key"`    // Google maps API key
			GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX port where the GPS sensor is mounted
			GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // Baud rate for the GPS sensor
		} `yaml:"location"`

		Motion struct {
			Enabled       bool          `yaml:"enabled"`         // Enable/disable motion sampler
			Interval      time.Duration `yaml:"interval"`        // Accelerometer sampling interval (~1s)
			IIODevicePath string        `yaml:"iio_device_path"` // Sysfs path of the accelerometer
			ProbeInterval time.Duration `yaml:"probe_interval"`  // How often reachability is re-probed
			ProbeTimeout  time.Duration `yaml:"probe_timeout"`   // Dial timeout for the reachability probe
		} `yaml:"motion"`

		Safety struct {
			Enabled bool `yaml:"enabled"` // Enable/disable safety assessor
		} `yaml:"safety"`

		Dropoff struct {
			Enabled                 bool          `yaml:"enabled"`                   // Enable/disable dropoff reporter
			Interval                time.Duration `yaml:"interval"`                  // Interval between accuracy samples
			WindowSize              int           `yaml:"window_size"`               // Accuracy readings per report
			MovementThresholdMeters float64       `yaml:"movement_threshold_meters"` // GPS displacement that counts as movement
		} `yaml:"dropoff"`

		Inactivity struct {
			Enabled                  bool          `yaml:"enabled"`                    // Enable/disable inactivity monitor
			Interval                 time.Duration `yaml:"interval"`                   // Interval between inactivity reports
			AccuracyTrustMeters      float64       `yaml:"accuracy_trust_meters"`      // Fixes with worse accuracy are distrusted
			MinDisplacementMeters    float64       `yaml:"min_displacement_meters"`    // Smaller deltas are GPS jitter, not movement
			FallbackIncrementMeters  float64       `yaml:"fallback_increment_meters"`  // Added when motion is sensed but GPS is distrusted
			MotionMagnitudeThreshold float64       `yaml:"motion_magnitude_threshold"` // Accelerometer magnitude that counts as movement
			ExpectedActive           bool          `yaml:"expected_active"`            // Deployment-level expected-active flag
		} `yaml:"inactivity"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
