// Package web serves a local preview of the generated site plus a small
// JSON API over the last generated upcoming set. It is only started in
// serve mode; one-shot generation never binds a socket.
package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	appLog "makersite/internal/log"
	"makersite/internal/model"
)

// Server exposes /health, /api/events and the static output directory.
type Server struct {
	outputDir string
	mux       *http.ServeMux

	// Latest generated pipeline result, swapped in whole after each
	// successful run.
	mu          sync.RWMutex
	events      []model.Event
	generatedAt time.Time
}

// NewServer constructs a Server rooted at the generator's output dir.
func NewServer(outputDir string) *Server {
	s := &Server{
		outputDir: outputDir,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// SetEvents publishes a freshly generated upcoming set to the API.
func (s *Server) SetEvents(events []model.Event, generatedAt time.Time) {
	s.mu.Lock()
	s.events = events
	s.generatedAt = generatedAt
	s.mu.Unlock()
}

// Start binds to listen and serves until the process exits. Shutdown
// semantics are left to the caller's process lifecycle.
func (s *Server) Start(listen string) error {
	appLog.Info("starting preview server", "listen", "http://"+listen)
	return http.ListenAndServe(listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)

	// Everything else is the generated static output (index.html,
	// ogp_image.png, events.ics).
	s.mux.Handle("/", http.FileServer(http.Dir(s.outputDir)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events      []eventDTO `json:"events"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// eventDTO is a JSON-friendly view of an event.
type eventDTO struct {
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	Country     string     `json:"country"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	IsDomestic  bool       `json:"is_domestic"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := s.events
	generatedAt := s.generatedAt
	s.mu.RUnlock()

	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, eventDTO{
			Name:        ev.Name,
			Location:    ev.Location,
			Country:     ev.Country,
			Description: ev.Description,
			URL:         ev.URL,
			ImageURL:    ev.ImageURL,
			IsDomestic:  ev.IsDomestic,
			DateFrom:    ev.DateFrom,
			DateTo:      ev.DateTo,
		})
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:      dtos,
		GeneratedAt: generatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}
