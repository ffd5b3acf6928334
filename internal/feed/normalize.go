package feed

import (
	"strconv"
	"strings"
	"time"

	appLog "makersite/internal/log"
	"makersite/internal/model"
	"makersite/internal/sheet"
)

// Normalizer converts raw sheet rows into Event records.
//
// The sheet interleaves year-header rows ("2025年") with data rows whose
// date cells carry only month/day fragments. Normalization is a single
// left-to-right pass: each header updates the year context for every
// row after it, and never for rows before it.
type Normalizer struct {
	countries *CountryTable
	loc       *time.Location

	// now supplies the fallback year when data rows appear before any
	// header. Injectable for tests.
	now func() time.Time
}

// NewNormalizer builds a Normalizer. loc may be nil (local time).
func NewNormalizer(countries *CountryTable, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{
		countries: countries,
		loc:       loc,
		now:       time.Now,
	}
}

// Normalize runs one pass over the rows in input order. Invalid rows are
// dropped, never surfaced as errors: a bad row degrades locally.
func (n *Normalizer) Normalize(rows []sheet.Row) []model.Event {
	var ctx YearContext
	events := make([]model.Event, 0, len(rows))

	for _, row := range rows {
		name := row.Get(sheet.ColName)
		location := row.Get(sheet.ColLocation)
		region := row.Get(sheet.ColRegion)
		dateFrom := row.Get(sheet.ColDateFrom)
		dateTo := row.Get(sheet.ColDateTo)

		// Year-header row: trailing 年 marker with no location and no
		// date. Updates the context and is never itself a candidate.
		if year, ok := parseYearHeader(name, location, dateFrom); ok {
			ctx.Year = year
			appLog.Info("year header detected", "year", year)
			continue
		}

		if name == "" || location == "" {
			continue
		}

		// Data rows before the first header fall back to the clock year.
		if !ctx.Valid() {
			ctx.Year = n.now().Year()
			appLog.Warn("no year header before data rows, using current year", "year", ctx.Year)
		}

		from, to := ResolveRange(dateFrom, dateTo, ctx, n.loc)

		// Inverted range in the source: retained as given, surfaced as a
		// data-quality warning rather than silently swapped.
		if from != nil && to != nil && to.Before(*from) {
			appLog.Warn("event range is inverted (date_to before date_from)",
				"name", name, "date_from", from.Format("2006-01-02"), "date_to", to.Format("2006-01-02"))
		}

		country := n.countries.Home()
		if region != "" {
			country = n.countries.FromRegion(region)
		}

		fullLocation := location
		if region != "" {
			fullLocation = location + ", " + region
		}

		events = append(events, model.Event{
			Name:        name,
			Location:    fullLocation,
			Region:      region,
			Country:     country,
			Description: row.Get(sheet.ColDescription),
			URL:         row.Get(sheet.ColURL),
			IsDomestic:  n.countries.IsDomestic(country),
			DateFrom:    from,
			DateTo:      to,
		})
	}

	appLog.Info("rows normalized", "event_count", len(events))
	return events
}

// parseYearHeader recognizes rows like 名称="2025年" with empty 場所/から.
// A malformed year ("来年" etc.) is skipped without touching the context.
func parseYearHeader(name, location, dateFrom string) (int, bool) {
	if location != "" || dateFrom != "" {
		return 0, false
	}
	if !strings.HasSuffix(name, "年") {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimSuffix(name, "年"))
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
