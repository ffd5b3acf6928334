package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"makersite/internal/capture"
	"makersite/internal/config"
	"makersite/internal/feed"
	appLog "makersite/internal/log"
	"makersite/internal/model"
	"makersite/internal/publish"
	"makersite/internal/sheet"
	"makersite/internal/site"
	"makersite/internal/state"
	"makersite/internal/timeline"
)

// pipelineResult carries one successful generation's outputs back to
// the caller (serve mode publishes them to the preview API).
type pipelineResult struct {
	Events      []model.Event
	GeneratedAt time.Time
}

// runPipeline executes one full generation cycle:
//
//	fetch -> gate -> normalize -> filter+enrich -> layout -> render -> persist
//
// A nil result with nil error means the change gate decided to skip.
// Individual stage failures degrade locally where the outputs still
// make sense (capture, publish); only unrecoverable output errors
// surface as a pipeline error.
func runPipeline(ctx context.Context, cfg *config.Config, force, autoPush bool) (*pipelineResult, error) {
	loc := resolveLocationOrLocal(cfg.Timezone)
	now := time.Now().In(loc)

	// Fetch the sheet once; the body feeds both the change gate and the
	// row parser.
	fetcher := sheet.NewFetcher()
	fetched, fetchErr := fetcher.Fetch(ctx, cfg.SheetURL)
	if fetchErr != nil {
		// Fail open: a missing fingerprint forces regeneration rather
		// than silently skipping updates. Rows degrade to empty.
		appLog.Error("sheet fetch failed", fetchErr, "url", cfg.SheetURL)
	}

	prev := state.Load(cfg.StatePath)

	if !force {
		staleness := time.Duration(cfg.StalenessHours) * time.Hour
		decision := state.Evaluate(prev, fetched.Hash, fetchErr, now, staleness)
		if !decision.Regenerate {
			appLog.Info("regeneration skipped", "reason", decision.Reason)
			return nil, nil
		}
		appLog.Info("regeneration warranted", "reason", decision.Reason)
	} else {
		appLog.Info("forced regeneration, change detection skipped")
	}

	rows, err := sheet.ParseRows(fetched.Body)
	if err != nil {
		// Malformed CSV: continue with an empty set rather than abort.
		appLog.Error("sheet CSV unparsable, proceeding with no rows", err)
		rows = nil
	}

	countries := feed.LoadCountryTable(cfg.CountryMapPath, cfg.HomeCountry)
	normalizer := feed.NewNormalizer(countries, loc)
	events := normalizer.Normalize(rows)

	lookupTimeout := time.Duration(cfg.Enrich.TimeoutSec) * time.Second
	enricher := feed.NewEnricher(
		feed.NewOGPImageSource(lookupTimeout),
		cfg.Enrich.Workers,
		time.Duration(cfg.Enrich.StaggerMs)*time.Millisecond,
		lookupTimeout,
	)

	upcoming := feed.SelectUpcoming(ctx, events, cfg.HorizonDays, now, enricher)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	timelinePath := filepath.Join(cfg.OutputDir, "timeline.html")
	imagePath := filepath.Join(cfg.OutputDir, "ogp_image.png")
	indexPath := filepath.Join(cfg.OutputDir, "index.html")
	icsPath := filepath.Join(cfg.OutputDir, "events.ics")

	// Timeline visual: layout is pure; the HTML + screenshot are the
	// raster step.
	frame := timeline.Compute(upcoming, timeline.Params{
		Width:     cfg.Timeline.Width,
		Height:    cfg.Timeline.Height,
		MaxEvents: cfg.Timeline.MaxEvents,
		RowHeight: cfg.Timeline.RowHeight,
	})
	if err := timeline.WriteHTML(frame, now, timelinePath); err != nil {
		return nil, err
	}

	if err := capture.TimelinePNG(ctx, capture.Options{
		HTMLPath:   timelinePath,
		OutputPath: imagePath,
		Width:      cfg.Timeline.Width,
		Height:     cfg.Timeline.Height,
	}); err != nil {
		// A failed screenshot leaves the previous image (or none) in
		// place; the page itself is still worth publishing.
		appLog.Error("timeline capture failed, keeping previous image", err)
	}

	page, err := site.RenderPage(upcoming, cfg.SiteBaseURL, now)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(indexPath, page, 0o644); err != nil {
		return nil, fmt.Errorf("write index.html: %w", err)
	}

	if err := os.WriteFile(icsPath, []byte(site.BuildICS(upcoming, now)), 0o644); err != nil {
		return nil, fmt.Errorf("write events.ics: %w", err)
	}

	// State write happens only after every output landed.
	if err := state.Save(cfg.StatePath, state.ChangeState{
		ContentHash: fetched.Hash,
		LastUpdated: now,
		EventCount:  len(upcoming),
	}); err != nil {
		appLog.Error("state save failed", err, "path", cfg.StatePath)
	}

	domestic := 0
	for _, ev := range upcoming {
		if ev.IsDomestic {
			domestic++
		}
	}
	appLog.Info("site generated",
		"upcoming", len(upcoming),
		"domestic", domestic,
		"international", len(upcoming)-domestic,
		"output_dir", cfg.OutputDir,
	)

	if autoPush {
		pushed, err := publish.AutoCommitPush(ctx, "", []string{indexPath, imagePath, icsPath, cfg.StatePath}, now)
		if err != nil {
			appLog.Error("auto push failed", err)
		} else if !pushed {
			appLog.Info("auto push skipped, no changes")
		}
	}

	return &pipelineResult{Events: upcoming, GeneratedAt: now}, nil
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
