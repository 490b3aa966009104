package watchlist

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// SourceFunc produces the current classification.
type SourceFunc func(ctx context.Context) (Buckets, error)

// NotifyFunc receives a classification whose membership changed.
type NotifyFunc func(Buckets)

// Poller re-runs the classifier on a fixed interval. It is a polling refresh:
// every tick re-reads the history through the source, and notify fires only
// when bucket membership differs from the previous tick.
type Poller struct {
	interval time.Duration
	source   SourceFunc
	notify   NotifyFunc
	logger   *slog.Logger
}

// NewPoller creates a poller. A non-positive interval defaults to one second.
func NewPoller(interval time.Duration, source SourceFunc, notify NotifyFunc, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{interval: interval, source: source, notify: notify, logger: logger}
}

// Run polls until ctx is cancelled. The first classification is delivered
// immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("poller: started", slog.Duration("interval", p.interval))

	var last [4][]string
	first := true
	for {
		b, err := p.source(ctx)
		if err != nil {
			p.logger.Warn("poller: classify failed", slog.String("error", err.Error()))
		} else if m := b.Membership(); first || !sameMembership(last, m) {
			first = false
			last = m
			if p.notify != nil {
				p.notify(b)
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info("poller: stopped")
			return
		case <-ticker.C:
		}
	}
}

func sameMembership(a, b [4][]string) bool {
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
