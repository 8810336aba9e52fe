package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/safetrail/sentinel-agent/internal/constants"
	"github.com/safetrail/sentinel-agent/internal/geofence"
	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/geomath"
)

// SafetyService turns each location fix into a SafetyAssessment: it fetches
// the current geofence set, tests containment and asks the scoring service
// for a safety score. Every cycle is independent; a failed cycle yields an
// assessment with no score and unknown risk, never an aborted pipeline.
type SafetyService struct {
	// Dependencies
	registry   geofence.Registry
	dispatcher dispatch.Client
	store      *state.Store
	logger     zerolog.Logger

	// Internal state management
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	inFlight atomic.Bool
}

// NewSafetyService creates a new SafetyService instance.
func NewSafetyService(registry geofence.Registry, dispatcher dispatch.Client, store *state.Store,
	logger zerolog.Logger) *SafetyService {
	return &SafetyService{
		registry:   registry,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Start makes the service accept position updates.
func (s *SafetyService) Start() error {
	if s.running {
		s.logger.Warn().Msg("SafetyService is already running")
		return errors.New("safety service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.logger.Info().Msg("SafetyService started")
	return nil
}

// Stop cancels any in-flight cycle and stops accepting updates. An assessment
// completing after Stop is discarded. Safe to call before Start and repeatedly.
func (s *SafetyService) Stop() error {
	if !s.running {
		s.logger.Debug().Msg("SafetyService is not running, nothing to stop")
		return nil
	}

	s.cancel()
	s.wg.Wait()

	s.running = false
	s.logger.Info().Msg("SafetyService stopped")
	return nil
}

// HandlePosition runs one assessment cycle for the given fix. Cycles run off
// the caller's goroutine; if the previous cycle is still in flight the new
// one is skipped rather than queued.
func (s *SafetyService) HandlePosition(position models.Position) {
	if !s.running {
		return
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug().Msg("Previous assessment cycle still in flight, skipping")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)

		assessment := s.RunCycle(s.ctx, position)
		if s.ctx.Err() != nil {
			return // stopped mid-cycle, discard the result
		}
		s.store.PublishAssessment(assessment)
	}()
}

// RunCycle produces a SafetyAssessment for the given position. Registry
// failures fail open to zero regions; scoring failures yield an absent score
// with unknown risk.
func (s *SafetyService) RunCycle(ctx context.Context, position models.Position) models.SafetyAssessment {
	assessment := models.SafetyAssessment{
		Position:   position,
		RiskLevel:  models.RiskUnknown,
		AssessedAt: time.Now(),
	}

	regions, err := s.registry.Fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Geofence fetch failed, treating as zero regions")
		regions = nil
	}

	point := geomath.Point{Lat: position.Latitude, Lon: position.Longitude}
	for _, region := range regions {
		center := geomath.Point{Lat: region.Latitude, Lon: region.Longitude}
		if geomath.InRadius(point, center, region.RadiusMeters) {
			assessment.IsGeofenced = true
			break
		}
	}

	var response models.ScoringResponse
	err = s.dispatcher.Post(ctx, constants.ScoringEndpoint, models.ScoringRequest{
		Lat:         position.Latitude,
		Lon:         position.Longitude,
		IsGeofenced: assessment.IsGeofenced,
	}, &response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scoring request failed, assessment has no score")
		return assessment
	}

	score := response.SafetyScore
	assessment.SafetyScore = &score
	assessment.RiskLevel = models.ParseRiskLevel(response.RiskLevel)

	s.logger.Info().
		Bool("is_geofenced", assessment.IsGeofenced).
		Float64("safety_score", score).
		Str("risk_level", string(assessment.RiskLevel)).
		Msg("Safety assessment completed")
	return assessment
}
