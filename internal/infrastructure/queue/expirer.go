package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = 30 * time.Second

// RoundExpirer is the interface the expirer drives on the dispatch service.
type RoundExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// Expirer periodically sweeps open rounds past their time budget into the
// expired state, closing the window on late claims.
type Expirer struct {
	service  RoundExpirer
	interval time.Duration
	log      zerolog.Logger
}

// NewExpirer creates an Expirer. If interval <= 0, defaultSweepInterval is used.
func NewExpirer(service RoundExpirer, interval time.Duration, log zerolog.Logger) *Expirer {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Expirer{service: service, interval: interval, log: log}
}

// Start runs the sweep loop until ctx is cancelled.
func (e *Expirer) Start(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := e.service.ExpireOverdue(ctx, time.Now().UTC())
			if err != nil {
				e.log.Error().Err(err).Msg("round expiry sweep failed")
				continue
			}
			if expired > 0 {
				e.log.Info().Int("expired", expired).Msg("rounds expired by sweep")
			}
		}
	}
}
