// Package state holds the published-value snapshots shared between pipeline
// services. Each entry has exactly one writer (the owning service); everyone
// else reads immutable snapshots. This replaces ad hoc mutable cells shared
// across components.
package state

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/safetrail/sentinel-agent/internal/models"
)

const (
	keyPosition   = "position"
	keyMotion     = "motion"
	keyAssessment = "assessment"
	keyPing       = "ping"
)

// Store is the snapshot exchange between services.
type Store struct {
	entries cmap.ConcurrentMap[string, any]
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{
		entries: cmap.New[any](),
	}
}

// PublishPosition records the latest location fix. Owner: location watcher.
func (s *Store) PublishPosition(p models.Position) {
	s.entries.Set(keyPosition, p)
}

// LastPosition returns the most recently published fix.
func (s *Store) LastPosition() (models.Position, bool) {
	return get[models.Position](s, keyPosition)
}

// PublishMotion records the latest motion sample. Owner: motion sampler.
func (s *Store) PublishMotion(m models.MotionSample) {
	s.entries.Set(keyMotion, m)
}

// LastMotion returns the most recently published motion sample.
func (s *Store) LastMotion() (models.MotionSample, bool) {
	return get[models.MotionSample](s, keyMotion)
}

// PublishAssessment records the latest safety assessment. Owner: safety assessor.
func (s *Store) PublishAssessment(a models.SafetyAssessment) {
	s.entries.Set(keyAssessment, a)
}

// LastAssessment returns the most recently published assessment.
func (s *Store) LastAssessment() (models.SafetyAssessment, bool) {
	return get[models.SafetyAssessment](s, keyAssessment)
}

// PublishPingStatus records the ingestion link health. Owner: ping service.
func (s *Store) PublishPingStatus(p models.PingStatus) {
	s.entries.Set(keyPing, p)
}

// PingStatus returns the most recently published link health.
func (s *Store) PingStatus() (models.PingStatus, bool) {
	return get[models.PingStatus](s, keyPing)
}

func get[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.entries.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
