package state_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
)

func TestStore_EmptyReads(t *testing.T) {
	s := state.NewStore()

	_, ok := s.LastPosition()
	assert.False(t, ok)
	_, ok = s.LastMotion()
	assert.False(t, ok)
	_, ok = s.LastAssessment()
	assert.False(t, ok)
	_, ok = s.PingStatus()
	assert.False(t, ok)
}

func TestStore_LastWriteWins(t *testing.T) {
	s := state.NewStore()

	s.PublishPosition(models.Position{Latitude: 1})
	s.PublishPosition(models.Position{Latitude: 2})

	p, ok := s.LastPosition()
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Latitude)
}

func TestStore_ConcurrentPublishAndRead(t *testing.T) {
	s := state.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.PublishMotion(models.MotionSample{X: float64(n), CapturedAt: time.Now()})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.LastMotion()
			}
		}()
	}
	wg.Wait()

	_, ok := s.LastMotion()
	assert.True(t, ok)
}
