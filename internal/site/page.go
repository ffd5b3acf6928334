// Package site renders the static outputs consumed by visitors: the
// event page (index.html) and the iCalendar feed (events.ics).
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"makersite/internal/model"
)

//go:embed templates
var embeddedTemplates embed.FS

var pageTmpl = template.Must(
	template.New("index.html.tmpl").
		Funcs(template.FuncMap{
			"formatDate": FormatEventDate,
			"truncate":   TruncateDescription,
		}).
		ParseFS(embeddedTemplates, "templates/index.html.tmpl"),
)

// PageData is the template model for the event page.
type PageData struct {
	DomesticEvents      []model.Event
	InternationalEvents []model.Event
	TotalEvents         int
	OGPImageURL         string
	LastUpdated         string
}

// RenderPage renders the event page for the given upcoming set. Events
// are split into domestic and international sections; the OGP image URL
// is derived from the site base URL (with a placeholder fallback so the
// meta tags stay valid when no base URL is configured).
func RenderPage(events []model.Event, siteBaseURL string, now time.Time) ([]byte, error) {
	data := PageData{
		TotalEvents: len(events),
		OGPImageURL: ogpImageURL(siteBaseURL),
		LastUpdated: now.Format("2006-01-02 15:04 MST"),
	}

	for _, ev := range events {
		if ev.IsDomestic {
			data.DomesticEvents = append(data.DomesticEvents, ev)
		} else {
			data.InternationalEvents = append(data.InternationalEvents, ev)
		}
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("site: render page: %w", err)
	}
	return buf.Bytes(), nil
}

func ogpImageURL(siteBaseURL string) string {
	if siteBaseURL == "" {
		return "https://via.placeholder.com/1200x630/667eea/ffffff?text=Upcoming+Maker+Events"
	}
	if siteBaseURL[len(siteBaseURL)-1] != '/' {
		siteBaseURL += "/"
	}
	return siteBaseURL + "ogp_image.png"
}
