// Package api exposes the game engine over JSON HTTP: event ingestion,
// player features and classes, unlock checks, story generation, and
// class forest generation.
package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/game/storage"
	"github.com/bergenthala/ai-class-generator/internal/story"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

// Server wires the HTTP surface to storage, the archetype catalog, and
// the story service.
type Server struct {
	store     storage.Store
	catalog   *archetype.Catalog
	story     *story.Service
	seedRules []unlock.Rule
	tracer    trace.Tracer

	// now and seed are injectable for tests.
	now  func() time.Time
	seed func() int64
}

// NewServer builds a Server. A nil catalog uses the builtin archetypes;
// a nil story service serves fallback narration only; nil seed rules
// use the builtin unlock set.
func NewServer(store storage.Store, catalog *archetype.Catalog, storySvc *story.Service, seedRules []unlock.Rule) *Server {
	if catalog == nil {
		catalog = archetype.Builtin()
	}
	if storySvc == nil {
		storySvc = story.New("", "", nil)
	}
	if seedRules == nil {
		seedRules = unlock.BuiltinRules()
	}
	return &Server{
		store:     store,
		catalog:   catalog,
		story:     storySvc,
		seedRules: seedRules,
		tracer:    otel.Tracer("classforged/api"),
		now:       time.Now,
		seed:      func() int64 { return rand.Int63() },
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.handleCreateEvent)
	mux.HandleFunc("GET /player/{id}/features", s.handlePlayerFeatures)
	mux.HandleFunc("GET /player/{id}/classes", s.handlePlayerClasses)
	mux.HandleFunc("POST /check-unlocks/{id}", s.handleCheckUnlocks)
	mux.HandleFunc("POST /generate-story", s.handleGenerateStory)
	mux.HandleFunc("POST /generate-forest", s.handleGenerateForest)
	mux.HandleFunc("GET /forest", s.handleGetForest)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
