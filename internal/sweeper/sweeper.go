// Package sweeper runs the fixed-interval expiry sweep that keeps the
// in-memory stores bounded. Sweeping happens on its own goroutine and relies
// on the stores' own locking to stay out of the verification path's way.
package sweeper

import (
	"context"
	"time"

	"github.com/jrsteele09/go-sso-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Store is anything with TTL-bound records the sweeper can purge.
type Store interface {
	DeleteExpired(now time.Time) int
}

type target struct {
	name  string
	store Store
}

type Sweeper struct {
	interval time.Duration
	targets  []target
}

func New(interval time.Duration) *Sweeper {
	return &Sweeper{interval: interval}
}

// Register adds a store to the sweep schedule. Not safe to call after Run.
func (s *Sweeper) Register(name string, store Store) {
	s.targets = append(s.targets, target{name: name, store: store})
}

// Run blocks until ctx is cancelled, sweeping every interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry sweeper stopped")
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *Sweeper) sweep(now time.Time) {
	for _, t := range s.targets {
		removed := t.store.DeleteExpired(now)
		if removed > 0 {
			metrics.SweepRemoved.WithLabelValues(t.name).Add(float64(removed))
			log.Debug().Str("store", t.name).Int("removed", removed).Msg("swept expired records")
		}
	}
}
