package service

import (
	"context"
	"time"

	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/messaging"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// SnapshotPublisher is satisfied by messaging.Publisher. Narrowed to an
// interface so tests can capture cycles without a broker.
type SnapshotPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// Broadcaster pushes analytics snapshots to the fanout exchange on a
// fixed cadence. Each cycle runs under its own timeout so one slow query
// cannot stall the loop past the next tick.
type Broadcaster struct {
	analytics    *AnalyticsService
	alerts       *AlertService
	publisher    SnapshotPublisher
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *logger.Logger
	cancel       context.CancelFunc
}

// NewBroadcaster creates a new analytics broadcaster
func NewBroadcaster(
	analytics *AnalyticsService,
	alerts *AlertService,
	publisher SnapshotPublisher,
	interval, cycleTimeout time.Duration,
	log *logger.Logger,
) *Broadcaster {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if cycleTimeout <= 0 || cycleTimeout >= interval {
		cycleTimeout = interval - interval/5
	}

	return &Broadcaster{
		analytics:    analytics,
		alerts:       alerts,
		publisher:    publisher,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       log,
	}
}

// Start starts the broadcaster in a background goroutine.
func (b *Broadcaster) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)

	go func() {
		b.logger.Info().Dur("interval", b.interval).Msg("analytics broadcaster started")

		// First snapshot immediately, then on the ticker.
		b.runCycle(ctx)

		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				b.logger.Info().Msg("analytics broadcaster stopped")
				return
			case <-ticker.C:
				b.runCycle(ctx)
			}
		}
	}()
}

// Stop stops the broadcaster goroutine
func (b *Broadcaster) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *Broadcaster) runCycle(ctx context.Context) {
	start := time.Now()

	cycleCtx, cancel := context.WithTimeout(ctx, b.cycleTimeout)
	defer cancel()

	// Snapshots cover all branches; the loop runs as the service itself.
	cycleCtx = scope.WithScope(cycleCtx, scope.System())

	snapshot, err := b.analytics.BuildSnapshot(cycleCtx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to build analytics snapshot")
		return
	}

	if err := b.publisher.Publish(cycleCtx, messaging.EventAnalyticsSnapshot, snapshot); err != nil {
		b.logger.Error().Err(err).Msg("failed to publish analytics snapshot")
		return
	}

	if err := b.alerts.BroadcastCritical(cycleCtx); err != nil {
		b.logger.Error().Err(err).Msg("failed to broadcast critical alerts")
	}

	b.logger.Debug().
		Dur("duration", time.Since(start)).
		Int("active_alerts", snapshot.ActiveAlerts).
		Msg("analytics snapshot published")
}
