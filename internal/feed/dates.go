package feed

import (
	"strconv"
	"strings"
	"time"
)

// YearContext carries the most recently seen year-header value through a
// normalization pass. It is passed into every resolution call explicitly
// instead of living as package state, which keeps the resolver pure.
type YearContext struct {
	Year int
}

// Valid reports whether a year header has been observed yet.
func (c YearContext) Valid() bool {
	return c.Year > 0
}

// dateLayout accepts both padded and unpadded month/day components
// ("2025/08/02" and "2025/8/2").
const dateLayout = "2006/1/2"

// ResolveDate parses a loose date fragment into an absolute calendar
// date. Rules, in priority order:
//
//  1. A fragment with three or more slash-separated components is
//     already year-qualified and parses as-is, independent of context.
//  2. Otherwise the context year is prepended and the month/day
//     remainder is parsed.
//
// Malformed input degrades to ok=false; this function never fails past
// its boundary.
func ResolveDate(fragment string, ctx YearContext, loc *time.Location) (time.Time, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if len(strings.Split(fragment, "/")) >= 3 {
		t, err := time.ParseInLocation(dateLayout, fragment, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if !ctx.Valid() {
		return time.Time{}, false
	}

	full := strconv.Itoa(ctx.Year) + "/" + fragment
	t, err := time.ParseInLocation(dateLayout, full, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResolveRange resolves both ends of a from/to pair under the same
// context. Either end may come back nil. A date_to that resolves
// earlier than date_from is retained as given; flagging the inversion
// is the caller's job.
//
// Known edge case: a range spanning a year rollover parses both ends
// under the same context year when the sheet omits the new year header.
// This mirrors the source data's convention and is not silently fixed.
func ResolveRange(fromFrag, toFrag string, ctx YearContext, loc *time.Location) (from, to *time.Time) {
	if t, ok := ResolveDate(fromFrag, ctx, loc); ok {
		from = &t
	}
	if t, ok := ResolveDate(toFrag, ctx, loc); ok {
		to = &t
	}
	return from, to
}
