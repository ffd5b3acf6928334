package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"makersite/internal/model"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestUpcomingWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

	events := []model.Event{
		{Name: "in progress", DateFrom: date(2024, 12, 31), DateTo: date(2025, 1, 2)},
		{Name: "already over", DateFrom: date(2024, 12, 29), DateTo: date(2024, 12, 30)},
		{Name: "ends today", DateFrom: date(2025, 1, 1)},
		{Name: "within horizon", DateFrom: date(2025, 6, 1)},
		{Name: "beyond horizon", DateFrom: date(2026, 6, 1)},
		{Name: "no dates"},
	}

	got := Upcoming(events, 365, now)

	want := map[string]bool{"in progress": true, "ends today": true, "within horizon": true}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for _, ev := range got {
		if !want[ev.Name] {
			t.Errorf("unexpected event in window: %q", ev.Name)
		}
	}
}

func TestUpcomingStartsExactlyAtCutoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Name: "at cutoff", DateFrom: date(2026, 1, 1)},
	}
	got := Upcoming(events, 365, now)
	if len(got) != 1 {
		t.Fatalf("event starting exactly at now+horizon should be included, got %d", len(got))
	}
}

// fakeImageSource records lookups and serves canned results per URL.
type fakeImageSource struct {
	mu      sync.Mutex
	calls   map[string]int
	images  map[string]string
	failing map[string]bool
}

func newFakeImageSource() *fakeImageSource {
	return &fakeImageSource{
		calls:   map[string]int{},
		images:  map[string]string{},
		failing: map[string]bool{},
	}
}

func (f *fakeImageSource) ExtractImageURL(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[pageURL]++
	if f.failing[pageURL] {
		return "", errors.New("lookup refused")
	}
	return f.images[pageURL], nil
}

func TestEnrichAllFillsOnlyPending(t *testing.T) {
	src := newFakeImageSource()
	src.images["https://a.example"] = "https://a.example/ogp.png"
	src.images["https://b.example"] = "https://b.example/ogp.png"

	events := []*model.Event{
		{Name: "needs image", URL: "https://a.example"},
		{Name: "already has image", URL: "https://b.example", ImageURL: "https://cached.example/x.png"},
		{Name: "no url"},
	}

	e := NewEnricher(src, 3, 0, time.Second)
	e.EnrichAll(context.Background(), events)

	if events[0].ImageURL != "https://a.example/ogp.png" {
		t.Errorf("pending event not enriched: %q", events[0].ImageURL)
	}
	if events[1].ImageURL != "https://cached.example/x.png" {
		t.Errorf("cached image overwritten: %q", events[1].ImageURL)
	}
	if src.calls["https://b.example"] != 0 {
		t.Error("event with an image should never be re-dispatched")
	}
	if src.calls["https://a.example"] != 1 {
		t.Errorf("expected exactly one lookup, got %d", src.calls["https://a.example"])
	}
}

func TestEnrichAllIdempotent(t *testing.T) {
	src := newFakeImageSource()
	src.images["https://a.example"] = "https://a.example/ogp.png"

	events := []*model.Event{{Name: "ev", URL: "https://a.example"}}
	e := NewEnricher(src, 2, 0, time.Second)

	e.EnrichAll(context.Background(), events)
	e.EnrichAll(context.Background(), events)

	if got := src.calls["https://a.example"]; got != 1 {
		t.Errorf("second pass should dispatch nothing, total lookups = %d", got)
	}
}

func TestEnrichAllFailureIsolated(t *testing.T) {
	src := newFakeImageSource()
	src.failing["https://bad.example"] = true
	src.images["https://good.example"] = "https://good.example/ogp.png"

	events := []*model.Event{
		{Name: "bad", URL: "https://bad.example"},
		{Name: "good", URL: "https://good.example"},
	}

	e := NewEnricher(src, 2, 0, time.Second)
	e.EnrichAll(context.Background(), events)

	if events[0].ImageURL != "" {
		t.Errorf("failed lookup should leave image empty, got %q", events[0].ImageURL)
	}
	if events[1].ImageURL == "" {
		t.Error("sibling lookup should succeed despite the failure")
	}
}

func TestSelectUpcomingSortedByStart(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []model.Event{
		{Name: "later", DateFrom: date(2025, 8, 2)},
		{Name: "sooner", DateFrom: date(2025, 3, 22)},
		{Name: "middle", DateFrom: date(2025, 6, 21)},
	}

	got := SelectUpcoming(context.Background(), events, 730, now, nil)

	wantOrder := []string{"sooner", "middle", "later"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d events, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestSelectUpcomingEnrichesBeforeReturning(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := newFakeImageSource()
	src.images["https://ev.example"] = "https://ev.example/ogp.png"

	events := []model.Event{
		{Name: "ev", URL: "https://ev.example", DateFrom: date(2025, 8, 2)},
	}

	got := SelectUpcoming(context.Background(), events, 730, now, NewEnricher(src, 5, 0, time.Second))
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].ImageURL != "https://ev.example/ogp.png" {
		t.Errorf("returned slice must carry the enriched image, got %q", got[0].ImageURL)
	}
}
