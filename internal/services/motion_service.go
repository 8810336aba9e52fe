package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/connectivity"
	"github.com/safetrail/sentinel-agent/pkg/motion"
)

// MotionService owns the device's last known motion/connectivity state. It
// samples the accelerometer at roughly 1 Hz and coalesces the reading with
// the network reachability state into a single last-write-wins sample. No
// history is kept.
type MotionService struct {
	// Configuration fields
	interval      time.Duration
	probeInterval time.Duration

	// Dependencies
	provider motion.Provider
	probe    connectivity.Probe
	store    *state.Store
	logger   zerolog.Logger

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewMotionService creates a new MotionService instance.
func NewMotionService(interval, probeInterval time.Duration, provider motion.Provider,
	probe connectivity.Probe, store *state.Store, logger zerolog.Logger) *MotionService {
	return &MotionService{
		interval:      interval,
		probeInterval: probeInterval,
		provider:      provider,
		probe:         probe,
		store:         store,
		logger:        logger,
	}
}

// Start launches the sampling loop.
func (m *MotionService) Start() error {
	if m.running {
		m.logger.Warn().Msg("MotionService is already running")
		return errors.New("motion service is already running")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.running = true

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runSamplingLoop()
	}()

	m.logger.Info().
		Dur("interval", m.interval).
		Msg("MotionService started")
	return nil
}

// Stop terminates the sampling loop. Safe to call before Start and repeatedly.
func (m *MotionService) Stop() error {
	if !m.running {
		m.logger.Debug().Msg("MotionService is not running, nothing to stop")
		return nil
	}

	m.cancel()
	m.wg.Wait()

	if err := m.provider.Close(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to close motion provider")
	}

	m.running = false
	m.logger.Info().Msg("MotionService stopped")
	return nil
}

// runSamplingLoop reads the accelerometer each tick and re-probes
// reachability on a coarser interval. A failed sensor read skips the tick.
func (m *MotionService) runSamplingLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var (
		reachable bool
		lastProbe time.Time
	)

	for {
		select {
		case <-ticker.C:
			if time.Since(lastProbe) >= m.probeInterval {
				reachable = m.probe.Reachable(m.ctx)
				lastProbe = time.Now()
			}

			sample, err := m.provider.Read()
			if err != nil {
				m.logger.Warn().Err(err).Msg("Accelerometer unavailable, skipping tick")
				continue
			}

			m.store.PublishMotion(models.MotionSample{
				X:                sample.X,
				Y:                sample.Y,
				Z:                sample.Z,
				NetworkReachable: reachable,
				CapturedAt:       time.Now(),
			})

		case <-m.ctx.Done():
			m.logger.Info().Msg("MotionService is stopping")
			return
		}
	}
}
