package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"huski_bookings/internal/adapters/observability"
	"huski_bookings/internal/domain"
)

// seedElementTypes is the allow-list the seed backfill is restricted to.
// The scheduled sync takes every element the remote sends.
var seedElementTypes = map[string]struct{}{
	domain.ElementTypeAccommodation: {},
	domain.ElementTypeTransport:     {},
	domain.ElementTypeActivity:      {},
}

// SyncService pulls booking changes from the travel API and upserts them.
// It is the only writer of bookingheader/bookingelement/updatetrack.
type SyncService struct {
	client domain.TravelClient
	repo   domain.BookingRepository
	cache  domain.Cache

	group singleflight.Group
	now   func() time.Time
}

func NewSyncService(c domain.TravelClient, r domain.BookingRepository, cache domain.Cache) *SyncService {
	return &SyncService{client: c, repo: r, cache: cache, now: time.Now}
}

// RunScheduled executes one watermark-driven pass: it reads the watermark,
// processes the change-list for [watermark, now) and advances the watermark
// only after that window completed. Per-booking failures are logged and
// never abort the batch; the returned error is non-nil only when the
// change-list itself could not be fetched, and then the watermark stays put
// so the same window is retried next tick. Concurrent callers collapse into
// the in-flight run (single-flight); the window and the watermark belong to
// the one closure that actually runs, so a collapsed caller can never push
// the watermark past an interval nobody fetched.
func (s *SyncService) RunScheduled(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = 6 * time.Hour
	}
	_, err, _ := s.group.Do("scheduled", func() (any, error) {
		until := s.now().UTC()

		since, err := s.repo.LastSyncedAt(ctx)
		if err != nil {
			return nil, fmt.Errorf("read sync watermark: %w", err)
		}
		if since.IsZero() {
			// Never synced: bootstrap with one interval of history.
			since = until.Add(-every)
		}

		if err := s.runScheduled(ctx, since, until); err != nil {
			return nil, err
		}
		if err := s.repo.SetLastSyncedAt(ctx, until); err != nil {
			log.Error().Err(err).Msg("advance sync watermark failed")
		}
		return nil, nil
	})
	return err
}

func (s *SyncService) runScheduled(ctx context.Context, since, until time.Time) error {
	started := s.now()

	changes, err := s.client.GetChanges(ctx, since, until)
	if err != nil {
		log.Error().Err(err).Time("since", since).Time("until", until).Msg("change-list fetch failed")
		return fmt.Errorf("change-list: %w", err)
	}
	log.Info().Int("changes", len(changes)).Time("since", since).Time("until", until).Msg("sync run starting")

	// In source order, duplicates included: a number listed twice is synced twice.
	for _, ch := range changes {
		if err := s.syncBooking(ctx, ch.Number, nil); err != nil {
			log.Error().Str("number", ch.Number).Err(err).Msg("sync booking failed")
			observability.ObserveSyncBooking(string(domain.TriggerSchedule), "error")
		} else {
			observability.ObserveSyncBooking(string(domain.TriggerSchedule), "ok")
		}

		// Audit records the attempt, not the outcome: one row per processed
		// number regardless of whether the upsert went through.
		if err := s.repo.AppendAudit(ctx, ch.Number, domain.TriggerSchedule, s.now().UTC()); err != nil {
			log.Error().Str("number", ch.Number).Err(err).Msg("audit append failed")
		}
	}

	observability.ObserveSyncRun(string(domain.TriggerSchedule), s.now().Sub(started))
	log.Info().Int("changes", len(changes)).Dur("took", s.now().Sub(started)).Msg("sync run done")
	return nil
}

// RunSeed backfills the static booking list once at startup. Only the core
// itinerary element types are taken, and no audit rows are written: the
// seed pass is a curated import, not a tracked synchronization.
func (s *SyncService) RunSeed(ctx context.Context, numbers []string) {
	started := s.now()
	for _, n := range numbers {
		if err := s.syncBooking(ctx, n, seedElementTypes); err != nil {
			log.Warn().Str("number", n).Err(err).Msg("seed booking failed")
			observability.ObserveSyncBooking(string(domain.TriggerSeed), "error")
			continue
		}
		observability.ObserveSyncBooking(string(domain.TriggerSeed), "ok")
		log.Info().Str("number", n).Msg("seed booking ok")
	}
	observability.ObserveSyncRun(string(domain.TriggerSeed), s.now().Sub(started))
}

// syncBooking fetches one booking and persists header before elements so the
// FK always resolves. A fetch or header failure skips the whole booking (no
// partial write); element failures are logged per element and do not undo
// the header. allow, when non-nil, restricts element type codes.
func (s *SyncService) syncBooking(ctx context.Context, number string, allow map[string]struct{}) error {
	payload, err := s.client.GetBooking(ctx, number)
	if err != nil {
		return fmt.Errorf("fetch booking %s: %w", number, err)
	}

	h := MapHeader(payload)
	if h.Number == "" {
		h.Number = number
	}
	headerID, err := s.repo.UpsertHeader(ctx, h)
	if err != nil {
		return fmt.Errorf("upsert header %s: %w", number, err)
	}

	for _, el := range MapElements(payload) {
		if allow != nil {
			if el.TypeCode == nil {
				continue
			}
			if _, ok := allow[*el.TypeCode]; !ok {
				continue
			}
		}
		if _, err := s.repo.UpsertElement(ctx, el, headerID); err != nil {
			log.Error().Str("number", number).Str("element", el.ExternalID).Err(err).Msg("upsert element failed")
		}
	}

	// Range keys are TTL-bound; only the unparameterized listing is evicted here.
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKeyAllBookings)
	}
	return nil
}
