package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"github.com/safetrail/sentinel-agent/internal/constants"
	"github.com/safetrail/sentinel-agent/internal/models"
	"github.com/safetrail/sentinel-agent/internal/state"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/safetrail/sentinel-agent/pkg/identity"
)

// PingService periodically pings the ingestion service so the backend knows
// the device is alive, and tracks the link health the anomaly reports embed:
// the age of the last successful ping and how many pings have been missed in
// a row. Each ping carries a small system snapshot.
type PingService struct {
	// Configuration fields
	interval time.Duration

	// Dependencies
	deviceInfo identity.DeviceInfoInterface
	dispatcher dispatch.Client
	store      *state.Store
	logger     zerolog.Logger

	// Owned state, touched only by the ping loop.
	lastSuccess time.Time
	missedCount int

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewPingService creates a new PingService instance.
func NewPingService(interval time.Duration, deviceInfo identity.DeviceInfoInterface,
	dispatcher dispatch.Client, store *state.Store, logger zerolog.Logger) *PingService {
	return &PingService{
		interval:   interval,
		deviceInfo: deviceInfo,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Start launches the ping loop.
func (p *PingService) Start() error {
	if p.running {
		p.logger.Warn().Msg("PingService is already running")
		return errors.New("ping service is already running")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.pingOnce()
			case <-p.ctx.Done():
				p.logger.Info().Msg("PingService is stopping")
				return
			}
		}
	}()

	p.logger.Info().
		Dur("interval", p.interval).
		Msg("PingService started")
	return nil
}

// Stop terminates the ping loop. Safe to call before Start and repeatedly.
func (p *PingService) Stop() error {
	if !p.running {
		p.logger.Debug().Msg("PingService is not running, nothing to stop")
		return nil
	}

	p.cancel()
	p.wg.Wait()

	p.running = false
	p.logger.Info().Msg("PingService stopped")
	return nil
}

// pingOnce sends one heartbeat and updates the published link health.
func (p *PingService) pingOnce() {
	ping := models.Ping{
		DeviceID:  p.deviceInfo.GetDeviceID(),
		Timestamp: time.Now(),
		Status:    constants.StatusAlive,
	}
	p.attachSystemSnapshot(&ping)

	if err := p.dispatcher.Post(p.ctx, constants.PingEndpoint, ping, nil); err != nil {
		p.missedCount++
		p.logger.Warn().
			Err(err).
			Int("missed_count", p.missedCount).
			Msg("Ping failed")
	} else {
		p.missedCount = 0
		p.lastSuccess = time.Now()
		p.logger.Debug().Msg("Ping succeeded")
	}

	p.store.PublishPingStatus(models.PingStatus{
		LastSuccess: p.lastSuccess,
		MissedCount: p.missedCount,
	})
}

// attachSystemSnapshot fills in best-effort system stats; missing stats are
// simply omitted from the payload.
func (p *PingService) attachSystemSnapshot(ping *models.Ping) {
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		ping.CPUPercent = &percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		ping.MemoryPercent = &vm.UsedPercent
	}
	if uptime, err := host.Uptime(); err == nil {
		ping.UptimeSeconds = &uptime
	}
}
