package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/constants"
	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/internal/utils"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/geomath"
	"github.com/safetrail/sentinel-agent/pkg/location"
)

// DropoffService owns the GPS accuracy sample window. Each tick it takes a
// fresh fix, independent of the location watcher's cadence, and appends the
// reported accuracy. A full window becomes one dropoff anomaly report and is
// then cleared no matter how the dispatch went: stale samples must never
// linger, and the next window is the retry.
type DropoffService struct {
	// Configuration fields
	interval        time.Duration
	windowSize      int
	movementMeters  float64
	motionThreshold float64

	// Dependencies
	provider   location.Provider
	dispatcher dispatch.Client
	store      *state.Store
	pool       *utils.WorkerPool
	logger     zerolog.Logger

	// Owned state, touched only by the tick loop.
	window   []float64
	firstFix *geomath.Point
	lastFix  *geomath.Point

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewDropoffService creates a new DropoffService instance.
func NewDropoffService(interval time.Duration, windowSize int, movementMeters, motionThreshold float64,
	provider location.Provider, dispatcher dispatch.Client, store *state.Store, pool *utils.WorkerPool,
	logger zerolog.Logger) *DropoffService {
	return &DropoffService{
		interval:        interval,
		windowSize:      windowSize,
		movementMeters:  movementMeters,
		motionThreshold: motionThreshold,
		provider:        provider,
		dispatcher:      dispatcher,
		store:           store,
		pool:            pool,
		logger:          logger,
		window:          make([]float64, 0, windowSize),
	}
}

// Start launches the sampling loop.
func (d *DropoffService) Start() error {
	if d.running {
		d.logger.Warn().Msg("DropoffService is already running")
		return errors.New("dropoff service is already running")
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.running = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				d.onTick()
			case <-d.ctx.Done():
				d.logger.Info().Msg("DropoffService is stopping")
				return
			}
		}
	}()

	d.logger.Info().
		Dur("interval", d.interval).
		Int("window_size", d.windowSize).
		Msg("DropoffService started")
	return nil
}

// Stop terminates the sampling loop. Safe to call before Start and repeatedly.
func (d *DropoffService) Stop() error {
	if !d.running {
		d.logger.Debug().Msg("DropoffService is not running, nothing to stop")
		return nil
	}

	d.cancel()
	d.wg.Wait()

	d.running = false
	d.logger.Info().Msg("DropoffService stopped")
	return nil
}

// onTick appends one fresh accuracy reading and flushes the window once it
// reaches capacity.
func (d *DropoffService) onTick() {
	loc, err := d.provider.GetLocation()
	if err != nil {
		d.logger.Warn().Err(err).Msg("Accuracy sample unavailable, skipping tick")
		return
	}

	fix := geomath.Point{Lat: loc.Latitude, Lon: loc.Longitude}
	if d.firstFix == nil {
		d.firstFix = &fix
	}
	d.lastFix = &fix

	d.window = append(d.window, loc.Accuracy)
	if len(d.window) < d.windowSize {
		return
	}

	report := d.buildReport()
	d.flush(report)
}

// buildReport snapshots the window plus the latest motion and risk state.
func (d *DropoffService) buildReport() models.DropoffReport {
	samples := make([]float64, len(d.window))
	copy(samples, d.window)

	report := models.DropoffReport{
		GPSAccuracy: samples,
		AreaRisk:    models.RiskUnknown,
	}

	gpsMoving := false
	if d.firstFix != nil && d.lastFix != nil {
		gpsMoving = geomath.DistanceMeters(*d.firstFix, *d.lastFix) > d.movementMeters
	}

	accMoving := false
	if sample, ok := d.store.LastMotion(); ok {
		accMoving = sample.Magnitude() > d.motionThreshold
		if sample.NetworkReachable {
			report.NetworkConnectivityState = 1
		}
	}

	// acc_vs_loc: do the accelerometer and GPS agree about movement over
	// this window?
	if accMoving == gpsMoving {
		report.AccVsLoc = 1
	}

	if ping, ok := d.store.PingStatus(); ok && !ping.LastSuccess.IsZero() {
		report.TimeSinceLastSuccessfulPing = int(time.Since(ping.LastSuccess).Seconds())
	}

	if assessment, ok := d.store.LastAssessment(); ok {
		report.AreaRisk = models.RiskFromScore(assessment.SafetyScore)
	}

	return report
}

// flush dispatches the report and clears the window unconditionally.
// Failures are logged and discarded; the next window is the retry.
func (d *DropoffService) flush(report models.DropoffReport) {
	submitted := d.pool.TrySubmit(func() {
		if err := d.dispatcher.Post(d.ctx, constants.DropoffEndpoint, report, nil); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to send dropoff report")
			return
		}
		d.logger.Info().
			Floats64("gps_accuracy", report.GPSAccuracy).
			Str("area_risk", string(report.AreaRisk)).
			Msg("Dropoff report sent")
	})
	if !submitted {
		d.logger.Warn().Msg("Dropoff dispatch dropped, worker pool saturated")
	}

	d.window = d.window[:0]
	d.firstFix = nil
	d.lastFix = nil
}
