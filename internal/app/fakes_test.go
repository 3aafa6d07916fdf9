package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"huski_bookings/internal/domain"
)

// ---- fakes shared by the app tests ----

type auditRow struct {
	Number  string
	Trigger domain.TriggerKind
}

type elementWrite struct {
	Element  domain.BookingElement
	HeaderID int64
}

type fakeRepo struct {
	headers  []domain.BookingHeader
	elements []elementWrite
	audits   []auditRow
	calls    []string // coarse call order: "header:<num>", "element:<id>", "audit:<num>"

	headerErrFor map[string]error // by number
	watermark    time.Time
	setCalls     int

	ranged []domain.BookingView
	all    []domain.HeaderView
}

func (f *fakeRepo) UpsertHeader(ctx context.Context, h domain.BookingHeader) (int64, error) {
	if err := f.headerErrFor[h.Number]; err != nil {
		return 0, err
	}
	f.headers = append(f.headers, h)
	f.calls = append(f.calls, "header:"+h.Number)
	return int64(100 + len(f.headers)), nil
}

func (f *fakeRepo) UpsertElement(ctx context.Context, e domain.BookingElement, headerID int64) (int64, error) {
	f.elements = append(f.elements, elementWrite{Element: e, HeaderID: headerID})
	f.calls = append(f.calls, "element:"+e.ExternalID)
	return int64(len(f.elements)), nil
}

func (f *fakeRepo) AppendAudit(ctx context.Context, number string, trigger domain.TriggerKind, at time.Time) error {
	f.audits = append(f.audits, auditRow{Number: number, Trigger: trigger})
	f.calls = append(f.calls, "audit:"+number)
	return nil
}

func (f *fakeRepo) LastSyncedAt(ctx context.Context) (time.Time, error) { return f.watermark, nil }
func (f *fakeRepo) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	f.watermark = t
	f.setCalls++
	return nil
}

func (f *fakeRepo) BookingsByDateRange(ctx context.Context, start, end string) ([]domain.BookingView, error) {
	return f.ranged, nil
}
func (f *fakeRepo) AllBookings(ctx context.Context) ([]domain.HeaderView, error) {
	return f.all, nil
}

type fakeTravel struct {
	changes    []domain.ChangeRef
	changesErr error
	bookings   map[string]map[string]any // by number; missing -> error
}

func (f *fakeTravel) GetChanges(ctx context.Context, from, till time.Time) ([]domain.ChangeRef, error) {
	return f.changes, f.changesErr
}

func (f *fakeTravel) GetBooking(ctx context.Context, number string) (map[string]any, error) {
	p, ok := f.bookings[number]
	if !ok {
		return nil, errors.New("remote: booking not found")
	}
	return p, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v.([]byte), dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- tiny helpers ----

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// payload builds a minimal remote detail envelope.
func payload(number string, elements ...map[string]any) map[string]any {
	els := make([]any, 0, len(elements))
	for _, e := range elements {
		els = append(els, e)
	}
	return map[string]any{
		"response": map[string]any{
			"booking": map[string]any{
				"number":          number,
				"trip_name":       "Trip " + number,
				"startdate":       "2023-07-01",
				"enddate":         "2023-07-10",
				"bookingelements": els,
			},
		},
	}
}

func element(id, typeCode string) map[string]any {
	return map[string]any{
		"id":               id,
		"element_name":     "Element " + id,
		"elementtype_code": typeCode,
		"amount":           "12,5",
	}
}
