package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/constants"
	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/internal/utils"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/geomath"
	"github.com/safetrail/sentinel-agent/pkg/power"
)

// InactivityService owns the displacement accumulator and the
// last-interaction timestamp. Location updates grow the accumulator, but
// only when the fix is trustworthy; a coarse fix with independent motion
// evidence adds a small fixed increment instead of the unreliable delta.
// Each tick emits one inactivity report and resets the accumulator whether
// or not the dispatch succeeded.
type InactivityService struct {
	// Configuration fields
	interval        time.Duration
	trustMeters     float64
	minDeltaMeters  float64
	fallbackMeters  float64
	motionThreshold float64
	expectedActive  bool

	// Dependencies
	dispatcher dispatch.Client
	store      *state.Store
	battery    power.Reader
	pool       *utils.WorkerPool
	logger     zerolog.Logger

	// Owned accumulator state. Guarded because location updates arrive on
	// the watcher goroutine while the tick loop reads and resets.
	mu              sync.Mutex
	displacement    float64
	lastPosition    *models.Position
	lastInteraction time.Time

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewInactivityService creates a new InactivityService instance.
func NewInactivityService(interval time.Duration, trustMeters, minDeltaMeters, fallbackMeters,
	motionThreshold float64, expectedActive bool, dispatcher dispatch.Client, store *state.Store,
	battery power.Reader, pool *utils.WorkerPool, logger zerolog.Logger) *InactivityService {
	return &InactivityService{
		interval:        interval,
		trustMeters:     trustMeters,
		minDeltaMeters:  minDeltaMeters,
		fallbackMeters:  fallbackMeters,
		motionThreshold: motionThreshold,
		expectedActive:  expectedActive,
		dispatcher:      dispatcher,
		store:           store,
		battery:         battery,
		pool:            pool,
		logger:          logger,
		lastInteraction: time.Now(),
	}
}

// OnUserInteraction resets the last-interaction timestamp. Called by the
// embedding application whenever the user does something.
func (i *InactivityService) OnUserInteraction() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastInteraction = time.Now()
}

// OnLocationUpdate feeds a new fix into the displacement accumulator.
func (i *InactivityService) OnLocationUpdate(position models.Position) {
	i.mu.Lock()
	defer i.mu.Unlock()

	previous := i.lastPosition
	i.lastPosition = &position

	if previous == nil {
		return
	}

	if position.AccuracyMeters < i.trustMeters {
		delta := geomath.DistanceMeters(
			geomath.Point{Lat: previous.Latitude, Lon: previous.Longitude},
			geomath.Point{Lat: position.Latitude, Lon: position.Longitude},
		)
		if delta > i.minDeltaMeters {
			i.displacement += delta
		}
		return
	}

	// Coarse fix: the raw delta would inflate displacement. If the
	// accelerometer independently says we are moving, count a small fixed
	// increment instead.
	if i.accelerometerMoving() {
		i.displacement += i.fallbackMeters
		i.logger.Debug().Msg("Fallback displacement increment, GPS distrusted but motion sensed")
	}
}

// Start launches the reporting loop.
func (i *InactivityService) Start() error {
	if i.running {
		i.logger.Warn().Msg("InactivityService is already running")
		return errors.New("inactivity service is already running")
	}

	i.ctx, i.cancel = context.WithCancel(context.Background())
	i.running = true

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()

		ticker := time.NewTicker(i.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.onTick()
			case <-i.ctx.Done():
				i.logger.Info().Msg("InactivityService is stopping")
				return
			}
		}
	}()

	i.logger.Info().
		Dur("interval", i.interval).
		Msg("InactivityService started")
	return nil
}

// Stop terminates the reporting loop. Safe to call before Start and repeatedly.
func (i *InactivityService) Stop() error {
	if !i.running {
		i.logger.Debug().Msg("InactivityService is not running, nothing to stop")
		return nil
	}

	i.cancel()
	i.wg.Wait()

	i.running = false
	i.logger.Info().Msg("InactivityService stopped")
	return nil
}

// onTick builds one inactivity report and resets the displacement
// accumulator regardless of the dispatch outcome.
func (i *InactivityService) onTick() {
	report := i.buildReport()

	submitted := i.pool.TrySubmit(func() {
		if err := i.dispatcher.Post(i.ctx, constants.InactivityEndpoint, report, nil); err != nil {
			i.logger.Warn().Err(err).Msg("Failed to send inactivity report")
			return
		}
		i.logger.Info().
			Int("displacement_m", report.DisplacementM).
			Int("idle_min", report.TimeSinceLastInteractionMin).
			Msg("Inactivity report sent")
	})
	if !submitted {
		i.logger.Warn().Msg("Inactivity dispatch dropped, worker pool saturated")
	}
}

// buildReport snapshots and resets the owned accumulator state.
func (i *InactivityService) buildReport() models.InactivityReport {
	i.mu.Lock()
	displacement := i.displacement
	idle := time.Since(i.lastInteraction)
	i.displacement = 0
	i.mu.Unlock()

	now := time.Now()
	moving := displacement > 0 || i.accelerometerMoving()

	report := models.InactivityReport{
		Hour:                        now.Hour(),
		DisplacementM:               int(math.Round(displacement)),
		TimeSinceLastInteractionMin: int(idle.Minutes()),
		AreaRisk:                    models.RiskUnknown,
		BatteryLevelPercent:         100,
	}
	if moving {
		report.MotionState = 1
	}
	if i.expectedActive {
		report.IsExpectedActive = 1
	}

	if ping, ok := i.store.PingStatus(); ok {
		report.MissedPingCount = ping.MissedCount
	}
	if assessment, ok := i.store.LastAssessment(); ok {
		report.AreaRisk = models.RiskFromScore(assessment.SafetyScore)
	}
	if level, err := i.battery.Level(); err == nil {
		report.BatteryLevelPercent = level
	} else {
		i.logger.Debug().Err(err).Msg("Battery level unavailable")
	}

	return report
}

// accelerometerMoving reports whether the latest motion sample exceeds the
// movement threshold.
func (i *InactivityService) accelerometerMoving() bool {
	sample, ok := i.store.LastMotion()
	return ok && sample.Magnitude() > i.motionThreshold
}
