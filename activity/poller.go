package activity

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is the background refresh cadence.
const DefaultPollInterval = 15 * time.Second

// Poller refreshes the feed on a fixed interval, independent of user
// actions, and hands each fresh feed to a callback. It owns no shared
// state itself; the callback replaces the consumer's feed atomically.
// Cancelling ctx stops the loop, so no background work leaks past
// teardown.
type Poller struct {
	agg      *Aggregator
	interval time.Duration
	onFeed   func([]Event)
	logger   *slog.Logger
}

// NewPoller creates a poller. interval 0 selects DefaultPollInterval.
func NewPoller(agg *Aggregator, interval time.Duration, onFeed func([]Event), logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{agg: agg, interval: interval, onFeed: onFeed, logger: logger}
}

// Run polls until ctx is cancelled. The first fetch happens immediately.
// Fetch errors are logged and the loop keeps going; the previous feed
// stays visible until a fetch succeeds again. No retry beyond the next
// scheduled tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	events, err := p.agg.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("activity poll failed", slog.String("error", err.Error()))
		}
		return
	}
	if p.onFeed != nil {
		p.onFeed(events)
	}
}
