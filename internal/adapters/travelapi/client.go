package travelapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"huski_bookings/internal/adapters/observability"
	"huski_bookings/internal/domain"
)

// Client talks to the travel-booking content API. All calls are rate limited
// client-side and retried on 429/transient 5xx with exponential backoff,
// honoring Retry-After when the server provides it.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrNotFound     = errors.New("travelapi: not found")
	ErrUnauthorized = errors.New("travelapi: unauthorized")
	ErrForbidden    = errors.New("travelapi: forbidden")
)

// changesRequest / changesEnvelope mirror the remote wire shape verbatim.
type changesRequest struct {
	Range struct {
		From string `json:"from"`
		Till string `json:"till"`
	} `json:"range"`
}

type changesEnvelope struct {
	Response struct {
		Changes []struct {
			Number string `json:"number"`
		} `json:"changes"`
	} `json:"response"`
}

// GetChanges asks the remote for bookings changed in [from, till).
// Order is preserved; an empty list is a normal answer.
func (c *Client) GetChanges(ctx context.Context, from, till time.Time) ([]domain.ChangeRef, error) {
	var req changesRequest
	req.Range.From = from.UTC().Format("2006-01-02T15:04:05")
	req.Range.Till = till.UTC().Format("2006-01-02T15:04:05")

	var env changesEnvelope
	if err := c.do(ctx, "changes", http.MethodPost, c.base+"/bookings/changes", req, &env); err != nil {
		return nil, err
	}
	out := make([]domain.ChangeRef, 0, len(env.Response.Changes))
	for _, ch := range env.Response.Changes {
		out = append(out, domain.ChangeRef{Number: ch.Number})
	}
	return out, nil
}

// GetBooking fetches the full detail envelope for one booking number.
// The payload is returned raw; field mapping is the app layer's job.
func (c *Client) GetBooking(ctx context.Context, number string) (map[string]any, error) {
	candidates := []string{
		fmt.Sprintf("%s/bookings/%s", c.base, number), // preferred
		fmt.Sprintf("%s/booking/%s", c.base, number),  // legacy
	}
	var out map[string]any
	var last error
	for _, u := range candidates {
		if err := c.do(ctx, "booking", http.MethodGet, u, nil, &out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue // try the next pattern
			}
			return nil, err // non-404: stop early
		}
		return out, nil
	}
	return nil, last
}

// do performs one JSON request with rate limiting and bounded retries.
func (c *Client) do(ctx context.Context, endpoint, method, url string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("User-Agent", "huski-bookings/1.0")

		attempt := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("travelapi", endpoint, 0, time.Since(attempt))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}

		observability.ObserveExternal("travelapi", endpoint, resp.StatusCode, time.Since(attempt))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles each attempt (200ms, 400ms, 800ms...) with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
