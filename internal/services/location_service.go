package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/location"
)

// LocationService owns the device's last known position. It polls the
// location provider at a fixed cadence, publishes each fix to the state
// store and fans it out to subscribers. A cycle whose fix fails is skipped,
// not retried, so the cadence is never compressed.
type LocationService struct {
	// Configuration fields
	interval time.Duration

	// Dependencies
	provider location.Provider
	store    *state.Store
	logger   zerolog.Logger

	// Subscribers registered before Start; invoked on the watcher goroutine.
	subscribers []func(models.Position)

	// Internal state management
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	running          bool
	permissionDenied bool
}

// NewLocationService creates a new LocationService instance with the provided configuration.
func NewLocationService(interval time.Duration, provider location.Provider, store *state.Store,
	logger zerolog.Logger) *LocationService {
	return &LocationService{
		interval: interval,
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// OnPosition registers a subscriber for new position fixes. Must be called
// before Start.
func (l *LocationService) OnPosition(fn func(models.Position)) {
	l.subscribers = append(l.subscribers, fn)
}

// Start authorizes the provider once and launches the sampling loop. A
// permission-denied provider marks the watcher as denied: the loop never
// starts and any further Start call is a no-op.
func (l *LocationService) Start() error {
	if l.permissionDenied {
		l.logger.Warn().Msg("LocationService start ignored: location permission denied")
		return nil
	}
	if l.running {
		l.logger.Warn().Msg("LocationService is already running")
		return errors.New("location service is already running")
	}

	if err := l.provider.Authorize(); err != nil {
		if errors.Is(err, location.ErrPermissionDenied) {
			l.permissionDenied = true
			l.logger.Warn().Err(err).Msg("Location permission denied, watcher will not start")
			return fmt.Errorf("location service: %w", err)
		}
		return err
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running = true

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.sampleOnce()
			case <-l.ctx.Done():
				l.logger.Info().Msg("LocationService is stopping")
				return
			}
		}
	}()

	l.logger.Info().
		Dur("interval", l.interval).
		Msg("LocationService started")
	return nil
}

// Stop terminates the sampling loop. Safe to call before Start and repeatedly.
func (l *LocationService) Stop() error {
	if !l.running {
		l.logger.Debug().Msg("LocationService is not running, nothing to stop")
		return nil
	}

	l.cancel()
	l.wg.Wait()

	if err := l.provider.Close(); err != nil {
		l.logger.Error().Err(err).Msg("Failed to close location provider")
	}

	l.running = false
	l.logger.Info().Msg("LocationService stopped")
	return nil
}

// sampleOnce takes one fix and publishes it. On provider failure the cycle
// is skipped; the next tick is the retry.
func (l *LocationService) sampleOnce() {
	loc, err := l.provider.GetLocation()
	if err != nil {
		l.logger.Warn().Err(err).Msg("Failed to get location, skipping cycle")
		return
	}

	position := models.Position{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		AccuracyMeters: loc.Accuracy,
		CapturedAt:     time.Now(),
	}

	l.store.PublishPosition(position)

	for _, fn := range l.subscribers {
		fn(position)
	}

	l.logger.Debug().
		Float64("latitude", position.Latitude).
		Float64("longitude", position.Longitude).
		Float64("accuracy_m", position.AccuracyMeters).
		Msg("Position published")
}
