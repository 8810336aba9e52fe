package service_registry

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/geofence"
	"github.com/safetrail/sentinel-agent/internal/registry"
	"github.com/safetrail/sentinel-agent/internal/services"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/internal/utils"
	"github.com/safetrail/sentinel-agent/pkg/connectivity"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/file"
	"github.com/safetrail/sentinel-agent/pkg/identity"
	"github.com/safetrail/sentinel-agent/pkg/location"
	"github.com/safetrail/sentinel-agent/pkg/motion"
	"github.com/safetrail/sentinel-agent/pkg/power"
)

// ServiceRegistry manages the lifecycle of the pipeline services.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	dispatcher  dispatch.Client
	fileClient  file.FileOperations
	store       *state.Store
	pool        *utils.WorkerPool
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(dispatcher dispatch.Client, fileClient file.FileOperations,
	store *state.Store, pool *utils.WorkerPool, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]registry.Service),
		dispatcher: dispatcher,
		fileClient: fileClient,
		store:      store,
		pool:       pool,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order. A service whose
// start fails with a location permission denial is skipped (that sub-loop
// stays down until permission changes); any other failure stops the already
// started services and aborts.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			if errors.Is(err, location.ErrPermissionDenied) {
				sr.Logger.Warn().Err(err).Msgf("Service %s skipped: location permission denied", name)
				continue
			}
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices builds and registers enabled services based on
// configuration, wiring the position fan-out between them.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deviceInfo identity.DeviceInfoInterface) error {
	var pingService *services.PingService
	if config.Services.Ping.Enabled {
		pingService = services.NewPingService(
			config.Services.Ping.Interval,
			deviceInfo,
			sr.dispatcher,
			sr.store,
			sr.Logger,
		)
	}

	var locationService *services.LocationService
	var locationProvider location.Provider
	if config.Services.Location.Enabled || config.Services.Dropoff.Enabled {
		provider, err := sr.buildLocationProvider(config)
		if err != nil {
			if errors.Is(err, location.ErrPermissionDenied) {
				// Same policy as a denial at start: the location-backed
				// services stay down, everything else runs.
				sr.Logger.Warn().Err(err).Msg("Location provider unavailable, location-backed services disabled")
				config.Services.Location.Enabled = false
				config.Services.Dropoff.Enabled = false
			} else {
				sr.Logger.Error().Err(err).Msg("Failed to create location provider")
				return err
			}
		}
		locationProvider = provider
	}
	if config.Services.Location.Enabled {
		locationService = services.NewLocationService(
			config.Services.Location.Interval,
			locationProvider,
			sr.store,
			sr.Logger,
		)
	}

	var motionService *services.MotionService
	if config.Services.Motion.Enabled {
		motionProvider, err := motion.NewIIOProvider(config.Services.Motion.IIODevicePath)
		if err != nil {
			sr.Logger.Error().Err(err).Msg("Failed to create motion provider")
			return err
		}
		probe := connectivity.NewDialProbe(probeAddress(config.Server.BaseURL), config.Services.Motion.ProbeTimeout)
		motionService = services.NewMotionService(
			config.Services.Motion.Interval,
			config.Services.Motion.ProbeInterval,
			motionProvider,
			probe,
			sr.store,
			sr.Logger,
		)
	}

	var safetyService *services.SafetyService
	if config.Services.Safety.Enabled {
		fenceRegistry, err := sr.buildGeofenceRegistry(config)
		if err != nil {
			sr.Logger.Error().Err(err).Msg("Failed to create geofence registry")
			return err
		}
		safetyService = services.NewSafetyService(fenceRegistry, sr.dispatcher, sr.store, sr.Logger)
	}

	var dropoffService *services.DropoffService
	if config.Services.Dropoff.Enabled {
		dropoffService = services.NewDropoffService(
			config.Services.Dropoff.Interval,
			config.Services.Dropoff.WindowSize,
			config.Services.Dropoff.MovementThresholdMeters,
			config.Services.Inactivity.MotionMagnitudeThreshold,
			locationProvider,
			sr.dispatcher,
			sr.store,
			sr.pool,
			sr.Logger,
		)
	}

	var inactivityService *services.InactivityService
	if config.Services.Inactivity.Enabled {
		inactivityService = services.NewInactivityService(
			config.Services.Inactivity.Interval,
			config.Services.Inactivity.AccuracyTrustMeters,
			config.Services.Inactivity.MinDisplacementMeters,
			config.Services.Inactivity.FallbackIncrementMeters,
			config.Services.Inactivity.MotionMagnitudeThreshold,
			config.Services.Inactivity.ExpectedActive,
			sr.dispatcher,
			sr.store,
			power.NewSysfsReader("/sys/class/power_supply"),
			sr.pool,
			sr.Logger,
		)
	}

	// Position fan-out: the safety assessor runs once per fix and the
	// inactivity monitor accumulates displacement from every fix.
	if locationService != nil {
		if safetyService != nil {
			locationService.OnPosition(safetyService.HandlePosition)
		}
		if inactivityService != nil {
			locationService.OnPosition(inactivityService.OnLocationUpdate)
		}
	}

	// Register services in the predefined order.
	registeredServices := []string{}
	register := func(name string, svc registry.Service) {
		sr.RegisterService(name, svc)
		registeredServices = append(registeredServices, name)
	}
	if pingService != nil {
		register("ping", pingService)
	}
	if safetyService != nil {
		register("safety", safetyService)
	}
	if locationService != nil {
		register("location", locationService)
	}
	if motionService != nil {
		register("motion", motionService)
	}
	if dropoffService != nil {
		register("dropoff", dropoffService)
	}
	if inactivityService != nil {
		register("inactivity", inactivityService)
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}

// probeAddress derives the host:port the reachability probe dials from the
// ingestion service base URL.
func probeAddress(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return u.Host + ":443"
	}
	return u.Host + ":80"
}

// buildLocationProvider selects the GPS sensor or the geolocation API per
// configuration.
func (sr *ServiceRegistry) buildLocationProvider(config *utils.Config) (location.Provider, error) {
	if config.Services.Location.SensorBased {
		return location.NewDeviceSensorProvider(
			config.Services.Location.GPSDevicePort,
			config.Services.Location.GPSDeviceBaudRate,
		), nil
	}
	return location.NewGoogleGeolocationProvider(config.Services.Location.MapsAPIKey)
}

// buildGeofenceRegistry selects the remote data store or the local sqlite
// mirror per configuration.
func (sr *ServiceRegistry) buildGeofenceRegistry(config *utils.Config) (geofence.Registry, error) {
	switch config.GeofenceRegistry.Backend {
	case "sqlite":
		return geofence.NewSQLiteStore(config.GeofenceRegistry.SQLitePath)
	case "http", "":
		apiKey, err := sr.fileClient.ReadFileRaw(config.GeofenceRegistry.APIKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read geofence registry API key: %w", err)
		}
		return geofence.NewHTTPStore(
			config.GeofenceRegistry.BaseURL,
			string(apiKey),
			config.GeofenceRegistry.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unknown geofence registry backend: %s", config.GeofenceRegistry.Backend)
	}
}
