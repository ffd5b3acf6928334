// Package timeline computes and renders the Gantt-style OGP visual of
// the upcoming event list. Layout (this file) is pure geometry; the
// HTML emitter and the Chromium rasterizer live alongside it.
package timeline

import (
	"fmt"
	"time"

	"makersite/internal/model"
)

// Canvas geometry defaults (1200x630 is the OGP recommended size).
const (
	DefaultWidth     = 1200
	DefaultHeight    = 630
	DefaultMaxEvents = 12
	DefaultRowHeight = 40

	headerHeight = 80
	chartTopPad  = 20
	chartBottom  = 40

	timelineX0  = 200
	rightMargin = 50

	dotRadius = 8
)

// Params fixes the canvas for one layout pass.
type Params struct {
	Width     int
	Height    int
	MaxEvents int
	RowHeight int
}

// Normalize fills zero values with the canvas defaults.
func (p *Params) Normalize() {
	if p.Width <= 0 {
		p.Width = DefaultWidth
	}
	if p.Height <= 0 {
		p.Height = DefaultHeight
	}
	if p.MaxEvents <= 0 {
		p.MaxEvents = DefaultMaxEvents
	}
	if p.RowHeight <= 0 {
		p.RowHeight = DefaultRowHeight
	}
}

// Placement is one event's resolved position on the canvas.
type Placement struct {
	Event model.Event

	// Row is the vertical slot, assigned by position modulo the row
	// capacity. This is positional row-cycling, not collision avoidance:
	// events beyond the capacity wrap into earlier rows and can visually
	// overlap. Known simplification.
	Row int

	// X is the start-date coordinate; EndX equals X for single-day
	// events and the end-date coordinate for multi-day ones.
	X    float64
	EndX float64

	MultiDay  bool
	DateLabel string
}

// MonthMarker is a month-boundary line, placed at the x of the first
// placed event in that month.
type MonthMarker struct {
	X     float64
	Label string // e.g. "08月"
}

// Frame is one rendering pass's derived geometry. It is a pure function
// of the input list and Params: identical input yields identical
// geometry, which makes golden-image testing possible. Never persisted.
type Frame struct {
	Params Params

	Earliest time.Time
	Latest   time.Time

	// TotalDays is the horizontal span in days, at least 1 so a
	// single-date timeline never collapses to zero width.
	TotalDays int

	Placements []Placement
	Months     []MonthMarker
}

// Empty reports whether the frame has nothing to draw.
func (f *Frame) Empty() bool {
	return len(f.Placements) == 0
}

// ChartStartY is the top of the chart area.
func (f *Frame) ChartStartY() int {
	return headerHeight + chartTopPad
}

// MaxRows is the row capacity of the chart area.
func (f *Frame) MaxRows() int {
	h := f.Params.Height - f.ChartStartY() - chartBottom
	rows := h / f.Params.RowHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

// YOf maps a row index to the row's top edge.
func (f *Frame) YOf(row int) int {
	return f.ChartStartY() + row*f.Params.RowHeight
}

// TimelineWidth is the horizontal extent available for date mapping.
func (f *Frame) TimelineWidth() float64 {
	return float64(f.Params.Width - timelineX0 - rightMargin)
}

// Compute lays out the given (already filtered and sorted) events.
//
//   - At most Params.MaxEvents events enter the visual; the underlying
//     event list is untouched.
//   - Earliest/Latest are the min/max resolved start dates of the
//     selection; when they coincide the span is one day.
//   - x = timelineX0 + days_since_earliest/total_days * timeline_width.
func Compute(events []model.Event, p Params) Frame {
	p.Normalize()
	frame := Frame{Params: p}

	display := events
	if len(display) > p.MaxEvents {
		display = display[:p.MaxEvents]
	}

	// Date bounds over resolved start dates only.
	var haveBounds bool
	for _, ev := range display {
		if ev.DateFrom == nil {
			continue
		}
		d := *ev.DateFrom
		if !haveBounds {
			frame.Earliest, frame.Latest = d, d
			haveBounds = true
			continue
		}
		if d.Before(frame.Earliest) {
			frame.Earliest = d
		}
		if d.After(frame.Latest) {
			frame.Latest = d
		}
	}
	if !haveBounds {
		return frame
	}

	frame.TotalDays = daysBetween(frame.Earliest, frame.Latest)
	if frame.TotalDays == 0 {
		frame.TotalDays = 1
	}

	maxRows := frame.MaxRows()
	currentMonth := ""

	for i, ev := range display {
		if ev.DateFrom == nil {
			// Undated events keep their positional row slot but are not
			// drawn, matching the selection being a presentation cap.
			continue
		}

		x := frame.xOf(*ev.DateFrom)
		endX := x
		multiDay := ev.MultiDay()
		if multiDay {
			endX = frame.xOf(*ev.DateTo)
			// The end date may fall outside the start-date bounds; keep
			// the bar on the canvas.
			if endX > timelineX0+frame.TimelineWidth() {
				endX = timelineX0 + frame.TimelineWidth()
			}
		}

		pl := Placement{
			Event:     ev,
			Row:       i % maxRows,
			X:         x,
			EndX:      endX,
			MultiDay:  multiDay,
			DateLabel: dateLabel(ev),
		}
		frame.Placements = append(frame.Placements, pl)

		// Month boundary: one marker per distinct year-month transition,
		// placed at the first event of that month.
		ym := ev.DateFrom.Format("2006-01")
		if ym != currentMonth {
			frame.Months = append(frame.Months, MonthMarker{
				X:     x,
				Label: fmt.Sprintf("%02d月", int(ev.DateFrom.Month())),
			})
			currentMonth = ym
		}
	}

	return frame
}

func (f *Frame) xOf(d time.Time) float64 {
	days := daysBetween(f.Earliest, d)
	return float64(timelineX0) + float64(days)/float64(f.TotalDays)*f.TimelineWidth()
}

// daysBetween counts calendar days from a to b (negative when b is
// earlier).
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

// dateLabel renders the label drawn beside a placement:
//
//	single day        "08/02"
//	same-month range  "08/02-03"
//	cross-month range "08/31-09/01"
func dateLabel(ev model.Event) string {
	if ev.DateFrom == nil {
		return "TBD"
	}
	from := *ev.DateFrom
	if !ev.MultiDay() {
		return from.Format("01/02")
	}
	to := *ev.DateTo
	if from.Month() == to.Month() {
		return from.Format("01/02") + "-" + to.Format("02")
	}
	return from.Format("01/02") + "-" + to.Format("01/02")
}
