package timeline

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"
)

// Bar/dot palette: domestic events vs international ones.
const (
	colorDomestic      = "#667eea"
	colorInternational = "#f093fb"
	colorBackground    = "#1a1a2e"
	colorHeader        = "#16213e"
	colorMuted         = "#8892b0"
)

// nameRuneLimit truncates long event names on the chart.
const nameRuneLimit = 25

// RenderHTML emits the frame as a self-contained HTML document sized to
// the canvas. The document is what the Chromium rasterizer screenshots;
// it signals readiness via data-ready="true" on <body>.
//
// generatedAt is passed explicitly so repeated renders of the same frame
// stay byte-identical under a fixed clock.
func RenderHTML(frame Frame, generatedAt time.Time) ([]byte, error) {
	view := buildView(frame, generatedAt)

	var buf bytes.Buffer
	if err := chartTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("timeline: render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the frame and writes it to path.
func WriteHTML(frame Frame, generatedAt time.Time, path string) error {
	data, err := RenderHTML(frame, generatedAt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("timeline: write failed: %w", err)
	}
	return nil
}

// chartView is the template's flattened model; all geometry is resolved
// here so the template stays arithmetic-free.
type chartView struct {
	Width, Height int
	HeaderHeight  int
	ChartTop      int
	ChartBottom   int
	MonthLineH    int

	Background string
	Header     string
	Muted      string

	Title       string
	GeneratedAt string
	Empty       bool

	Months []monthView
	Items  []itemView
}

type monthView struct {
	X     float64
	Y     int
	Label string
}

type itemView struct {
	Name      string
	DateLabel string
	Color     string

	MultiDay bool

	// Bar geometry: Left/Width for multi-day bars, CenterX for dots.
	Left    float64
	BarW    float64
	CenterX float64
	Top     int

	LabelY int
	DateX  float64
}

func buildView(frame Frame, generatedAt time.Time) chartView {
	v := chartView{
		Width:        frame.Params.Width,
		Height:       frame.Params.Height,
		HeaderHeight: headerHeight,
		ChartTop:     frame.ChartStartY(),
		ChartBottom:  frame.Params.Height - chartBottom,
		MonthLineH:   (frame.Params.Height - chartBottom) - frame.ChartStartY(),
		Background:   colorBackground,
		Header:       colorHeader,
		Muted:        colorMuted,
		Title:        "Upcoming Maker Events Timeline",
		GeneratedAt:  generatedAt.Format("2006-01-02 15:04"),
		Empty:        frame.Empty(),
	}

	for _, m := range frame.Months {
		v.Months = append(v.Months, monthView{
			X:     m.X,
			Y:     frame.ChartStartY() - 15,
			Label: m.Label,
		})
	}

	for _, pl := range frame.Placements {
		color := colorInternational
		if pl.Event.IsDomestic {
			color = colorDomestic
		}

		y := frame.YOf(pl.Row)

		item := itemView{
			Name:      truncateName(pl.Event.Name),
			DateLabel: pl.DateLabel,
			Color:     color,
			MultiDay:  pl.MultiDay,
			Top:       y + 10,
			LabelY:    y + 12,
		}

		if pl.MultiDay {
			// Inverted source ranges keep their data as given; the bar
			// is just drawn between the two coordinates.
			left, right := pl.X, pl.EndX
			if right < left {
				left, right = right, left
			}
			item.Left = left - dotRadius
			item.BarW = (right - left) + 2*dotRadius
			item.DateX = right + 15
		} else {
			item.CenterX = pl.X
			item.Left = pl.X - dotRadius
			item.BarW = 2 * dotRadius
			item.DateX = pl.X + 15
		}

		v.Items = append(v.Items, item)
	}

	return v
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= nameRuneLimit {
		return name
	}
	return string(r[:nameRuneLimit-3]) + "..."
}

var chartTmpl = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  html, body { width: {{.Width}}px; height: {{.Height}}px; overflow: hidden; }
  body {
    background: {{.Background}};
    font-family: 'Noto Sans JP', 'Hiragino Sans', sans-serif;
    color: #ffffff;
    position: relative;
  }
  .header {
    position: absolute; left: 0; top: 0;
    width: {{.Width}}px; height: {{.HeaderHeight}}px;
    background: {{.Header}};
    display: flex; align-items: center; justify-content: center;
  }
  .header h1 { font-size: 36px; font-weight: 700; }
  .month-line {
    position: absolute; width: 2px;
    background: {{.Header}};
  }
  .month-label {
    position: absolute; font-size: 16px; font-weight: 700;
    color: {{.Muted}};
  }
  .bar {
    position: absolute; height: 16px; border-radius: 8px;
    border: 2px solid #ffffff;
  }
  .name {
    position: absolute; left: 20px; font-size: 20px; font-weight: 700;
    white-space: nowrap;
  }
  .date {
    position: absolute; font-size: 16px; font-weight: 700;
    color: {{.Muted}}; white-space: nowrap;
  }
  .empty {
    position: absolute; width: 100%; top: 50%;
    text-align: center; font-size: 20px; color: {{.Muted}};
  }
  .footer {
    position: absolute; left: 20px; bottom: 10px;
    font-size: 18px; color: {{.Muted}};
  }
</style>
</head>
<body data-ready="true">
  <div class="header"><h1>{{.Title}}</h1></div>
{{- if .Empty}}
  <div class="empty">No upcoming events scheduled</div>
{{- else}}
{{- range .Months}}
  <div class="month-line" style="left: {{printf "%.1f" .X}}px; top: {{$.ChartTop}}px; height: {{$.MonthLineH}}px;"></div>
  <div class="month-label" style="left: {{printf "%.1f" .X}}px; top: {{.Y}}px; margin-left: 5px;">{{.Label}}</div>
{{- end}}
{{- range .Items}}
  <div class="bar" style="left: {{printf "%.1f" .Left}}px; top: {{.Top}}px; width: {{printf "%.1f" .BarW}}px; background: {{.Color}};"></div>
  <div class="name" style="top: {{.LabelY}}px;">{{.Name}}</div>
  <div class="date" style="left: {{printf "%.1f" .DateX}}px; top: {{.LabelY}}px;">{{.DateLabel}}</div>
{{- end}}
{{- end}}
  <div class="footer">Generated: {{.GeneratedAt}}</div>
</body>
</html>
`))
