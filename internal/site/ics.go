package site

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	ical "github.com/arran4/golang-ical"

	"makersite/internal/model"
)

// BuildICS serializes the upcoming set as an iCalendar feed of all-day
// events. Events without a resolved start are left out; a single-day
// event spans [date, date+1d) per all-day convention.
func BuildICS(events []model.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//makersite//Maker Events//JA")
	cal.SetXWRCalName("Upcoming Maker Events")

	for _, ev := range events {
		if ev.DateFrom == nil {
			continue
		}
		start := *ev.DateFrom

		// Exclusive all-day end: day after the last event day.
		end := start.AddDate(0, 0, 1)
		if ev.DateTo != nil && ev.DateTo.After(start) {
			end = ev.DateTo.AddDate(0, 0, 1)
		}

		ve := cal.AddEvent(eventUID(ev))
		ve.SetDtStampTime(now)
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(end)
		ve.SetSummary(ev.Name)
		ve.SetLocation(ev.Location)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}
	}

	return cal.Serialize()
}

// eventUID derives a stable UID from the event's name and start date so
// re-generated feeds update rather than duplicate entries in clients.
func eventUID(ev model.Event) string {
	key := ev.Name
	if ev.DateFrom != nil {
		key += "|" + ev.DateFrom.Format("2006-01-02")
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:]) + "@makersite"
}
