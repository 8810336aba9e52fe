package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/service_registry"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/internal/utils"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/file"
	"github.com/safetrail/sentinel-agent/pkg/identity"
)

func main() {
	// Set up structured logging with JSON output
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize DeviceInfo
	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load device information")
	}
	log.Info().Str("device_id", deviceInfo.GetDeviceID()).Msg("Device identity loaded")

	// Read the shared service key used for request signing
	serviceKey, err := fileClient.ReadFileRaw(config.Server.ServiceKeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read service key")
	}

	// The dispatcher is the single network boundary for telemetry
	dispatcher := dispatch.NewDispatcher(
		config.Server.BaseURL,
		config.Server.Timeout,
		deviceInfo.GetDeviceID(),
		serviceKey,
		log,
	)

	// Published-value snapshots shared between services
	stateStore := state.NewStore()

	// Bounded pool for report dispatches so tick loops never block on the network
	workerPool := utils.NewWorkerPool(4)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(dispatcher, fileClient, stateStore, workerPool, log)

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config, deviceInfo); err != nil {
		log.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start services")
	}
	log.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		log.Error().Err(err).Msg("Failed to stop some services")
	}
	workerPool.Shutdown()
}
