package app_test

import (
	"context"
	"testing"
	"time"

	"huski_bookings/internal/app"
	"huski_bookings/internal/domain"
)

func TestBookingsByDateRange_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{
		ranged: []domain.BookingView{{
			HeaderView: domain.HeaderView{ID: 1, Number: "23000001", TripName: ptr("Alps")},
			Elements:   []domain.ElementView{},
		}},
	}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	out, err := q.BookingsByDateRange(context.Background(), "2023-07-01", "2023-07-31")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Number != "23000001" || deref(out[0].TripName) != "Alps" {
		t.Fatalf("unexpected bookings: %+v", out)
	}
	if out[0].Elements == nil {
		t.Fatal("Elements must never be nil")
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.ranged[0].TripName = ptr("SHOULD NOT SEE THIS")

	out2, err := q.BookingsByDateRange(context.Background(), "2023-07-01", "2023-07-31")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if deref(out2[0].TripName) != "Alps" {
		t.Fatalf("expected cached trip name, got %s", deref(out2[0].TripName))
	}
}

func TestBookingsByDateRange_KeyPerWindow(t *testing.T) {
	repo := &fakeRepo{ranged: []domain.BookingView{}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	if _, err := q.BookingsByDateRange(context.Background(), "2023-07-01", "2023-07-31"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if _, err := q.BookingsByDateRange(context.Background(), "2023-08-01", "2023-08-31"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cache.store) != 2 {
		t.Fatalf("each window caches under its own key, got %d keys", len(cache.store))
	}
}

func TestAllBookings_Cache(t *testing.T) {
	repo := &fakeRepo{all: []domain.HeaderView{{ID: 1, Number: "23000001"}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.AllBookings(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].Number != "23000001" {
		t.Fatalf("unexpected bookings: %+v", out)
	}

	// Change repo, call again -> should come from cache
	repo.all[0].Number = "changed"
	out2, _ := q.AllBookings(context.Background())
	if out2[0].Number != "23000001" {
		t.Fatalf("expected cached number, got %s", out2[0].Number)
	}
}
