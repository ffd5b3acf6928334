package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	appLog "makersite/internal/log"
	"makersite/internal/model"
)

// Enricher runs best-effort image lookups for the upcoming subset on a
// small fixed worker pool. Concurrency stays hidden behind the single
// synchronous EnrichAll call: by the time it returns, every dispatched
// lookup has resolved or failed on its own.
type Enricher struct {
	source  ImageSource
	workers int

	// stagger is a courtesy delay between dispatches so the remote
	// targets are not hit in a burst. Not a correctness requirement.
	stagger time.Duration

	// timeout bounds a single lookup; expiry yields an empty image, not
	// a fault.
	timeout time.Duration
}

// NewEnricher builds an Enricher. Zero values fall back to the pool
// defaults (5 workers, 100ms stagger, 10s lookup timeout).
func NewEnricher(source ImageSource, workers int, stagger, timeout time.Duration) *Enricher {
	if workers <= 0 {
		workers = 5
	}
	if stagger < 0 {
		stagger = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Enricher{
		source:  source,
		workers: workers,
		stagger: stagger,
		timeout: timeout,
	}
}

// EnrichAll fills ImageURL for every event that carries a URL and lacks
// an image. Each event is dispatched at most once and written by exactly
// one worker, so no locking around the field is needed. One lookup's
// failure never aborts its siblings.
func (e *Enricher) EnrichAll(ctx context.Context, events []*model.Event) {
	pending := make([]*model.Event, 0, len(events))
	for _, ev := range events {
		// Idempotence: an event that already has an image is never
		// re-dispatched.
		if ev.URL != "" && ev.ImageURL == "" {
			pending = append(pending, ev)
		}
	}
	if len(pending) == 0 {
		return
	}

	appLog.Info("image enrichment start", "lookup_count", len(pending), "workers", e.workers)

	jobs := make(chan *model.Event)
	var wg sync.WaitGroup

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range jobs {
				e.enrichOne(ctx, ev)
			}
		}()
	}

	for i, ev := range pending {
		if i > 0 && e.stagger > 0 {
			time.Sleep(e.stagger)
		}
		jobs <- ev
	}
	close(jobs)

	wg.Wait()
}

// enrichOne performs a single lookup, failing closed to an empty image.
func (e *Enricher) enrichOne(ctx context.Context, ev *model.Event) {
	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	img, err := e.source.ExtractImageURL(lookupCtx, ev.URL)
	if err != nil {
		appLog.Debug("image lookup failed", "name", ev.Name, "url", ev.URL, "reason", err.Error())
		return
	}
	ev.ImageURL = img
}

// Upcoming selects events whose effective range intersects
// [today 00:00, now+horizon]. Multi-day events already in progress are
// intentionally retained: what matters is that they end today or later.
func Upcoming(events []model.Event, horizonDays int, now time.Time) []model.Event {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := now.AddDate(0, 0, horizonDays)

	upcoming := make([]model.Event, 0, len(events))
	for _, ev := range events {
		end := ev.EffectiveEnd()
		start := ev.EffectiveStart()
		if end == nil || start == nil {
			continue
		}
		if !end.Before(todayStart) && !start.After(cutoff) {
			upcoming = append(upcoming, ev)
		}
	}
	return upcoming
}

// SelectUpcoming is the full filter stage: select, enrich, then sort.
// Sorting happens strictly after all enrichment work has settled, so the
// final order never depends on lookup completion order.
func SelectUpcoming(ctx context.Context, events []model.Event, horizonDays int, now time.Time, enricher *Enricher) []model.Event {
	upcoming := Upcoming(events, horizonDays, now)

	if enricher != nil {
		refs := make([]*model.Event, len(upcoming))
		for i := range upcoming {
			refs[i] = &upcoming[i]
		}
		enricher.EnrichAll(ctx, refs)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].SortKey().Before(upcoming[j].SortKey())
	})

	appLog.Info("upcoming events selected", "count", len(upcoming), "horizon_days", horizonDays)
	return upcoming
}
