package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"huski_bookings/internal/app"
	"huski_bookings/internal/domain"
)

func TestRunScheduled_AuditsEveryChange(t *testing.T) {
	// "B" fails to fetch; "A" appears twice and is processed twice.
	repo := &fakeRepo{}
	travel := &fakeTravel{
		changes: []domain.ChangeRef{{Number: "A"}, {Number: "B"}, {Number: "A"}},
		bookings: map[string]map[string]any{
			"A": payload("A", element("1", "ACCO")),
		},
	}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("RunScheduled: %v", err)
	}

	// One audit row per change-list entry, failures and duplicates included.
	if len(repo.audits) != 3 {
		t.Fatalf("want 3 audit rows, got %d: %+v", len(repo.audits), repo.audits)
	}
	for i, want := range []string{"A", "B", "A"} {
		if repo.audits[i].Number != want || repo.audits[i].Trigger != domain.TriggerSchedule {
			t.Fatalf("audit[%d] = %+v, want number %s trigger schedule", i, repo.audits[i], want)
		}
	}

	// "A" synced twice, "B" never persisted.
	if len(repo.headers) != 2 {
		t.Fatalf("want 2 header upserts, got %d", len(repo.headers))
	}
	for _, h := range repo.headers {
		if h.Number != "A" {
			t.Fatalf("unexpected header %q persisted", h.Number)
		}
	}
}

func TestRunScheduled_ChangeListFailurePropagates(t *testing.T) {
	repo := &fakeRepo{}
	travel := &fakeTravel{changesErr: context.DeadlineExceeded}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err == nil {
		t.Fatal("want error when change-list fetch fails")
	}
	if len(repo.audits) != 0 || len(repo.headers) != 0 {
		t.Fatalf("nothing should be written, got audits=%d headers=%d", len(repo.audits), len(repo.headers))
	}
}

func TestRunScheduled_HeaderBeforeElements(t *testing.T) {
	repo := &fakeRepo{}
	travel := &fakeTravel{
		changes: []domain.ChangeRef{{Number: "A"}},
		bookings: map[string]map[string]any{
			"A": payload("A", element("e1", "ACCO"), element("e2", "HOTEL")),
		},
	}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("RunScheduled: %v", err)
	}

	got := strings.Join(repo.calls, ",")
	want := "header:A,element:e1,element:e2,audit:A"
	if got != want {
		t.Fatalf("call order %q, want %q", got, want)
	}
	// Elements carry the id returned by the header upsert.
	for _, ew := range repo.elements {
		if ew.HeaderID != 101 {
			t.Fatalf("element %s written under header id %d", ew.Element.ExternalID, ew.HeaderID)
		}
	}
}

func TestRunScheduled_KeepsEveryElementType(t *testing.T) {
	repo := &fakeRepo{}
	travel := &fakeTravel{
		changes: []domain.ChangeRef{{Number: "A"}},
		bookings: map[string]map[string]any{
			"A": payload("A", element("e1", "ACCO"), element("e2", "HOTEL"), element("e3", "VERVOER")),
		},
	}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("RunScheduled: %v", err)
	}
	if len(repo.elements) != 3 {
		t.Fatalf("scheduled sync must mirror all elements, got %d", len(repo.elements))
	}
}

func TestRunSeed_FiltersElementTypes(t *testing.T) {
	repo := &fakeRepo{}
	travel := &fakeTravel{
		bookings: map[string]map[string]any{
			"S1": payload("S1",
				element("e1", "ACCO"),
				element("e2", "HOTEL"), // not a core itinerary type
				element("e3", "VERVOER"),
				element("e4", "ACTIVITEIT"),
			),
		},
	}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	s.RunSeed(context.Background(), []string{"S1", "missing"})

	if len(repo.headers) != 1 || repo.headers[0].Number != "S1" {
		t.Fatalf("want one header for S1, got %+v", repo.headers)
	}
	if len(repo.elements) != 3 {
		t.Fatalf("want 3 filtered elements, got %d", len(repo.elements))
	}
	for _, ew := range repo.elements {
		if deref(ew.Element.TypeCode) == "HOTEL" {
			t.Fatal("HOTEL element must be filtered out of the seed import")
		}
	}
	// Seed runs leave no audit trail.
	if len(repo.audits) != 0 {
		t.Fatalf("seed must not write audit rows, got %d", len(repo.audits))
	}
}

func TestSyncBooking_EvictsListingCache(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{store: map[string]any{"bookings:all": []domain.HeaderView{{Number: "stale"}}}}
	travel := &fakeTravel{
		changes:  []domain.ChangeRef{{Number: "A"}},
		bookings: map[string]map[string]any{"A": payload("A")},
	}
	s := app.NewSyncService(travel, repo, cache)

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("RunScheduled: %v", err)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "bookings:all" {
		t.Fatalf("want bookings:all evicted, got %v", cache.dels)
	}
}

func TestRunScheduled_FallsBackToChangeNumber(t *testing.T) {
	// Payload without a number field: the change-list number is used.
	repo := &fakeRepo{}
	travel := &fakeTravel{
		changes: []domain.ChangeRef{{Number: "23000042"}},
		bookings: map[string]map[string]any{
			"23000042": {"response": map[string]any{"booking": map[string]any{"trip_name": "No number"}}},
		},
	}
	s := app.NewSyncService(travel, repo, &fakeCache{})

	if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
		t.Fatalf("RunScheduled: %v", err)
	}
	if len(repo.headers) != 1 || repo.headers[0].Number != "23000042" {
		t.Fatalf("header number not backfilled: %+v", repo.headers)
	}
}

// gateTravel blocks inside GetChanges until released, and records every
// window end it was asked to fetch.
type gateTravel struct {
	mu      sync.Mutex
	tills   []time.Time
	enter   chan struct{}
	release chan struct{}
}

func (g *gateTravel) GetChanges(ctx context.Context, from, till time.Time) ([]domain.ChangeRef, error) {
	g.mu.Lock()
	g.tills = append(g.tills, till)
	g.mu.Unlock()
	g.enter <- struct{}{}
	<-g.release
	return nil, nil
}

func (g *gateTravel) GetBooking(ctx context.Context, number string) (map[string]any, error) {
	return nil, errors.New("gateTravel: no bookings")
}

func TestRunScheduled_CollapsedCallDoesNotAdvanceWatermark(t *testing.T) {
	// A caller that joins an in-flight pass must not fetch a second window
	// or move the watermark past one: the window and the watermark belong
	// to the pass that actually ran.
	repo := &fakeRepo{}
	g := &gateTravel{enter: make(chan struct{}, 2), release: make(chan struct{})}
	s := app.NewSyncService(g, repo, &fakeCache{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
			t.Errorf("RunScheduled: %v", err)
		}
	}()
	<-g.enter // the first pass is now inside the change-list fetch

	go func() {
		defer wg.Done()
		if err := s.RunScheduled(context.Background(), 6*time.Hour); err != nil {
			t.Errorf("RunScheduled: %v", err)
		}
	}()
	time.Sleep(50 * time.Millisecond) // give the second caller time to join the in-flight pass
	close(g.release)
	wg.Wait()

	if len(g.tills) != 1 {
		t.Fatalf("want a single change-list fetch, got %d windows: %v", len(g.tills), g.tills)
	}
	if repo.setCalls != 1 {
		t.Fatalf("want a single watermark write, got %d", repo.setCalls)
	}
	if !repo.watermark.Equal(g.tills[0]) {
		t.Fatalf("watermark %v does not match the fetched window end %v", repo.watermark, g.tills[0])
	}
}
