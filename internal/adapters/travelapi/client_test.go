package travelapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"huski_bookings/internal/adapters/travelapi"
)

func TestClient_GetBooking_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"response": map[string]any{"booking": map[string]any{"number": "23000001"}},
			})
		}
	}))
	defer ts.Close()

	cl, err := travelapi.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetBooking(ctx, "23000001")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["response"] == nil {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetBooking_FallsBackToLegacyPath(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/booking/23000001" {
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"number": "23000001"})
			return
		}
		w.WriteHeader(404)
	}))
	defer ts.Close()

	cl, err := travelapi.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := cl.GetBooking(ctx, "23000001")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["number"] != "23000001" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(paths) != 2 || paths[0] != "/bookings/23000001" || paths[1] != "/booking/23000001" {
		t.Fatalf("unexpected path order: %v", paths)
	}
}

func TestClient_GetBooking_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := travelapi.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.GetBooking(ctx, "missing")
	if !errors.Is(err, travelapi.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_GetChanges(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings/changes" {
			w.WriteHeader(404)
			return
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"response":{"changes":[{"number":"A"},{"number":"B"},{"number":"A"}]}}`))
	}))
	defer ts.Close()

	cl, err := travelapi.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	from := time.Date(2023, 7, 1, 6, 0, 0, 0, time.UTC)
	till := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	changes, err := cl.GetChanges(ctx, from, till)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Order and duplicates are preserved verbatim.
	if len(changes) != 3 || changes[0].Number != "A" || changes[1].Number != "B" || changes[2].Number != "A" {
		t.Fatalf("unexpected changes: %+v", changes)
	}

	rng, _ := gotBody["range"].(map[string]any)
	if rng["from"] != "2023-07-01T06:00:00" || rng["till"] != "2023-07-01T12:00:00" {
		t.Fatalf("unexpected range body: %+v", gotBody)
	}
}

func TestClient_EmptyKeyRejected(t *testing.T) {
	if _, err := travelapi.New("http://example.com", "", 5); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
