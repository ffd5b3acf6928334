package model

import "time"

// Event is the central entity of the pipeline: one maker event as
// normalized from a single spreadsheet row.
//
// DateFrom / DateTo are nil when the source row carried no resolvable
// fragment for that end. A nil DateTo with a non-nil DateFrom means a
// single-day event.
type Event struct {
	Name     string
	Location string // combined display string, e.g. "東京ビッグサイト, 東京都"
	Region   string // raw region column, kept for country derivation audits
	Country  string

	Description string
	URL         string

	// ImageURL is populated lazily, and only for events selected as
	// upcoming (best-effort OGP lookup).
	ImageURL string

	IsDomestic bool

	DateFrom *time.Time
	DateTo   *time.Time
}

// EffectiveStart returns the date used for filtering and sorting:
// DateFrom, or nil when the event has no resolved start.
func (e *Event) EffectiveStart() *time.Time {
	return e.DateFrom
}

// EffectiveEnd returns DateTo when present, else DateFrom. Multi-day
// events in progress are judged against this end, not the start.
func (e *Event) EffectiveEnd() *time.Time {
	if e.DateTo != nil {
		return e.DateTo
	}
	return e.DateFrom
}

// MultiDay reports whether the resolved range spans more than one
// calendar day.
func (e *Event) MultiDay() bool {
	if e.DateFrom == nil || e.DateTo == nil {
		return false
	}
	return !sameDay(*e.DateFrom, *e.DateTo)
}

// SortKey returns the ascending-order key for the upcoming list.
// Events without a resolved start sort last (treated as maximal).
func (e *Event) SortKey() time.Time {
	if e.DateFrom == nil {
		return maxTime
	}
	return *e.DateFrom
}

var maxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
