package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler fires the scheduled sync on a fixed cadence, first run
// immediately on Start. The sync service owns the window and the watermark;
// the scheduler only provides the cadence.
type Scheduler struct {
	sync  *SyncService
	every time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(s *SyncService, every time.Duration) *Scheduler {
	if every <= 0 {
		every = 6 * time.Hour
	}
	return &Scheduler{sync: s, every: every}
}

// Start begins the scheduler loop.
func (sc *Scheduler) Start(ctx context.Context) error {
	sc.mu.Lock()
	if sc.running {
		sc.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	sc.running = true
	sc.stopCh = make(chan struct{})
	sc.doneCh = make(chan struct{})
	sc.mu.Unlock()

	log.Info().Dur("every", sc.every).Msg("sync scheduler starting")
	go sc.run(ctx)
	return nil
}

// Stop stops the loop and waits for it to finish. An in-flight run is not
// interrupted. Safe to call more than once; only the caller that wins the
// transition closes the stop channel and waits.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	if !sc.running {
		sc.mu.Unlock()
		return
	}
	sc.running = false
	stopCh, doneCh := sc.stopCh, sc.doneCh
	sc.mu.Unlock()

	close(stopCh)
	<-doneCh
	log.Info().Msg("sync scheduler stopped")
}

func (sc *Scheduler) run(ctx context.Context) {
	defer close(sc.doneCh)

	ticker := time.NewTicker(sc.every)
	defer ticker.Stop()

	sc.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			sc.RunOnce(ctx)
		case <-sc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes one scheduled pass. Errors are logged, never fatal to
// future ticks; a failed window is retried wholesale on the next one.
func (sc *Scheduler) RunOnce(ctx context.Context) {
	if err := sc.sync.RunScheduled(ctx, sc.every); err != nil {
		log.Error().Err(err).Msg("scheduled sync failed")
	}
}
